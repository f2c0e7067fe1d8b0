package config

import (
	"testing"

	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		CentralControl: CentralControlConfig{
			HostAddress:   "http://192.168.1.10/cgi-bin/cc51rpc.cgi",
			TimeoutMillis: 10000,
		},
		MQTT: MQTTConfig{
			BaseTopic:        "Becker",
			HADiscoveryTopic: "homeassistant",
		},
		MonitorConfig: MonitorConfig{
			PollIntervalMillis: 30000,
		},
	}
}

func TestValidate(t *testing.T) {

	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "becker", cfg.MQTT.BaseTopic)
}

func TestValidateRejects(t *testing.T) {

	tests := map[string]func(*Config){
		"missing address":   func(c *Config) { c.CentralControl.HostAddress = "" },
		"relative address":  func(c *Config) { c.CentralControl.HostAddress = "192.168.1.10/cgi-bin/cc51rpc.cgi" },
		"zero timeout":      func(c *Config) { c.CentralControl.TimeoutMillis = 0 },
		"bad base topic":    func(c *Config) { c.MQTT.BaseTopic = "becker/home" },
		"bad ha topic":      func(c *Config) { c.MQTT.HADiscoveryTopic = "" },
		"short poll period": func(c *Config) { c.MonitorConfig.PollIntervalMillis = 500 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := validConfig()
	cfg.CentralControl.HostAddress = "ftp://gateway"
	assert.ErrorIs(t, cfg.Validate(), centralcontrol.ErrInvalidAddress)
}

func TestClientConfig(t *testing.T) {

	cc := CentralControlConfig{
		HostAddress:    "http://gw",
		GatewayToken:   "token",
		InvertPosition: true,
		Prefix:         "home",
		TimeoutMillis:  2500,
	}
	client := cc.ClientConfig()
	assert.Equal(t, "http://gw", client.Address)
	assert.Equal(t, "token", client.Cookie)
	assert.True(t, client.InvertPosition)
	assert.Equal(t, "home", client.Prefix)
	assert.Equal(t, int64(2500), client.Timeout.Milliseconds())
}
