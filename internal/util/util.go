package util

import (
	"github.com/DominikStarke/becker-centralcontrol-has/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		CentralControl: config.CentralControlConfig{
			HostAddress:   "http://127.0.0.1/cgi-bin/cc51rpc.cgi",
			TimeoutMillis: 1000,
		},
		MQTT: config.MQTTConfig{
			Host:              "localhost",
			Port:              1883,
			BaseTopic:         "becker",
			HADiscoveryEnable: true,
			HADiscoveryTopic:  "homeassistant",
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis: 5000,
		},
		Port: 8080,
	}
}
