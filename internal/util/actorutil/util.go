package actorutil

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/mqtt"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel, zap.PanicLevel, zap.FatalLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

// ParsedMQTTCommandToCommand turns a parsed MQTT command into an entity
// command request.
func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.EntityCommandRequest, error) {
	target := domain.EntityCommandRequestMixIn{ObjectId: cmd.ObjectId}
	switch {
	case cmd.Component == "cover" && cmd.Command == mqtt.MQTT_COMMAND_SET:
		var action domain.CoverAction
		switch cmd.Payload {
		case mqtt.MQTT_PAYLOAD_OPEN:
			action = domain.CoverActionOpen
		case mqtt.MQTT_PAYLOAD_CLOSE:
			action = domain.CoverActionClose
		case mqtt.MQTT_PAYLOAD_STOP:
			action = domain.CoverActionStop
		default:
			return nil, fmt.Errorf("%w: %q", mqtt.ErrInvalidPayload, cmd.Payload)
		}
		return domain.CoverCommandRequest{EntityCommandRequestMixIn: target, Action: action}, nil
	case cmd.Component == "cover" && cmd.Command == mqtt.MQTT_COMMAND_SET_POSITION:
		position, err := strconv.Atoi(cmd.Payload)
		if err != nil || position < 0 || position > 100 {
			return nil, fmt.Errorf("%w: %q", mqtt.ErrInvalidPayload, cmd.Payload)
		}
		return domain.CoverCommandRequest{EntityCommandRequestMixIn: target, Action: domain.CoverActionSetPosition, Position: position}, nil
	case cmd.Component == "light" && cmd.Command == mqtt.MQTT_COMMAND_SET:
		return domain.LightCommandRequest{EntityCommandRequestMixIn: target, On: cmd.Payload == mqtt.MQTT_PAYLOAD_ON}, nil
	}
	return nil, mqtt.ErrInvalidCommand
}
