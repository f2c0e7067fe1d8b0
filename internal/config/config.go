package config

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel       zapcore.Level
	CentralControl CentralControlConfig `mapstructure:"centralcontrol"`
	MQTT           MQTTConfig           `mapstructure:"mqtt"`
	MonitorConfig  MonitorConfig        `mapstructure:"monitor"`
	Port           uint                 `mapstructure:"port"`
	HttpLog        bool                 `mapstructure:"http_log"`
}

type CentralControlConfig struct {
	HostAddress    string `mapstructure:"host_address"`
	GatewayToken   string `mapstructure:"gw_token"`
	InvertPosition bool   `mapstructure:"invert_position"`
	Prefix         string `mapstructure:"prefix"`
	TimeoutMillis  uint32 `mapstructure:"timeout_millis"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
	DiscoveryCron      string `mapstructure:"discovery_cron"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func (c CentralControlConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

func (c CentralControlConfig) ClientConfig() centralcontrol.Config {
	return centralcontrol.Config{
		Address:        c.HostAddress,
		Cookie:         c.GatewayToken,
		Timeout:        c.Timeout(),
		InvertPosition: c.InvertPosition,
		Prefix:         c.Prefix,
	}
}

func (c MonitorConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

// Validate checks bounds and normalizes the MQTT topics in place.
func (c *Config) Validate() error {
	if c.CentralControl.HostAddress == "" {
		return errors.New("config param centralcontrol.host_address is required")
	}
	u, err := url.Parse(c.CentralControl.HostAddress)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config param centralcontrol.host_address: %w", centralcontrol.ErrInvalidAddress)
	}
	if c.CentralControl.TimeoutMillis == 0 {
		return errors.New("config param centralcontrol.timeout_millis should be > 0")
	}

	baseTopic, err := CheckMQTTTopic(c.MQTT.BaseTopic)
	if err != nil {
		return errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	c.MQTT.BaseTopic = baseTopic

	hadBaseTopic, err := CheckMQTTTopic(c.MQTT.HADiscoveryTopic)
	if err != nil {
		return errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	c.MQTT.HADiscoveryTopic = hadBaseTopic

	if c.MonitorConfig.PollIntervalMillis < 1000 {
		return errors.New("config param monitor.poll_interval_millis should be >= 1000")
	}
	return nil
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
