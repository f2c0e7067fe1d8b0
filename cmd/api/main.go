package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	adactor "github.com/DominikStarke/becker-centralcontrol-has/internal/adapter/actor"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/config"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/actor"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/scheduler"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/server"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/util/actorutil"
	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		os.Exit(1)
	}
	safePrintConfig(*cfg)

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())
	defer logger.Sync()

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	// init gateway actor provider
	gatewayProv, err := centralControlActorProvider(cfg, logger)
	if err != nil {
		logger.Error("gateway client", zap.Error(err))
		os.Exit(1)
	}

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterActor(*cfg, gatewayProv, mqttActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		logger.Error("spawn master", zap.Error(err))
		os.Exit(1)
	}

	// periodic rediscovery
	schedCtx, cancelSched := context.WithCancel(context.Background())
	defer cancelSched()
	sched := scheduler.New(logger)
	if err := sched.ScheduleRediscovery(cfg.MonitorConfig.DiscoveryCron, ctx, pid); err != nil {
		logger.Error("rediscovery schedule", zap.Error(err))
		os.Exit(1)
	}
	sched.Start(schedCtx)

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelStop()
	sched.Stop(stopCtx)

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => BECKER_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("BECKER_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("becker")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.WarnLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func centralControlActorProvider(cfg *config.Config, logger *zap.Logger) (actor.CentralControlActorProvider, error) {

	client, err := centralcontrol.NewClient(cfg.CentralControl.ClientConfig(), logger, centralcontrol.Instrument{
		RecordTime: func(method string, elapsed time.Duration) {
			logger.Debug("gateway call", zap.String("method", method), zap.Duration("elapsed", elapsed))
		},
	})
	if err != nil {
		return nil, err
	}

	return func() *adactor.CentralControlActor {
		return adactor.NewCentralControlActor(client, cfg.CentralControl.Timeout(), logger)
	}, nil
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(es *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("centralcontrol.host_address", "")
	viper.SetDefault("centralcontrol.gw_token", "")
	viper.SetDefault("centralcontrol.invert_position", false)
	viper.SetDefault("centralcontrol.prefix", "")
	viper.SetDefault("centralcontrol.timeout_millis", 10000)
	viper.SetDefault("mqtt.host", "localhost")
	viper.SetDefault("mqtt.port", 1883)
	viper.SetDefault("mqtt.username", "")
	viper.SetDefault("mqtt.password", "")
	viper.SetDefault("mqtt.ha_discovery_enable", true)
	viper.SetDefault("mqtt.base_topic", "becker")
	viper.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	viper.SetDefault("monitor.poll_interval_millis", 30000)
	viper.SetDefault("monitor.discovery_cron", "0 0 * * * *")
	viper.SetDefault("port", 8080)
	viper.SetDefault("http_log", false)
}

func safePrintConfig(cfg config.Config) {
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	if cfg.CentralControl.GatewayToken != "" {
		cfg.CentralControl.GatewayToken = "*redacted*"
	}
	slog.Info("Using", "config", cfg)
}
