package mqtt

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	MQTT_PAYLOAD_ONLINE       = "online"
	MQTT_PAYLOAD_OFFLINE      = "offline"
	MQTT_PAYLOAD_ON           = "ON"
	MQTT_PAYLOAD_OFF          = "OFF"
	MQTT_PAYLOAD_OPEN         = "OPEN"
	MQTT_PAYLOAD_CLOSE        = "CLOSE"
	MQTT_PAYLOAD_STOP         = "STOP"
	MQTT_STATE_OPEN           = "open"
	MQTT_STATE_CLOSED         = "closed"
	MQTT_STATE_STOPPED        = "stopped"
	MQTT_COMMAND_SET          = "set"
	MQTT_COMMAND_SET_POSITION = "set_position"
)

var (
	ErrInvalidCommand = errors.New("invalid command")
	ErrInvalidPayload = errors.New("invalid command payload")
)

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("becker_%d", rand.IntN(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(client mqtt.Client),
	onConnectionLostHandler func(mqtt.Client, error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = onConnectHandler
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = onConnectionLostHandler
	}
	return &MQTTClient{
		client:             mqtt.NewClient(opts),
		cfg:                cfg.MQTT,
		coverCommandRegexp: coverCommandExtractor(cfg.MQTT.BaseTopic),
		lightCommandRegexp: lightCommandExtractor(cfg.MQTT.BaseTopic),
	}
}

type MQTTClient struct {
	client             mqtt.Client
	cfg                config.MQTTConfig
	coverCommandRegexp *regexp.Regexp
	lightCommandRegexp *regexp.Regexp
}

type ParsedMQTTCommand struct {
	Component string
	ObjectId  string
	Command   string
	Payload   string
}

func (c *MQTTClient) baseTopic() string {
	return c.cfg.BaseTopic
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.baseTopic())
}

func (c *MQTTClient) CoverStateTopic(id string) string {
	return fmt.Sprintf("%s/cover/%s/state", c.baseTopic(), id)
}

func (c *MQTTClient) CoverPositionTopic(id string) string {
	return fmt.Sprintf("%s/cover/%s/position", c.baseTopic(), id)
}

func (c *MQTTClient) CoverCommandTopic(id string) string {
	return fmt.Sprintf("%s/cover/%s/%s", c.baseTopic(), id, MQTT_COMMAND_SET)
}

func (c *MQTTClient) CoverSetPositionTopic(id string) string {
	return fmt.Sprintf("%s/cover/%s/%s", c.baseTopic(), id, MQTT_COMMAND_SET_POSITION)
}

func (c *MQTTClient) LightStateTopic(id string) string {
	return fmt.Sprintf("%s/light/%s/state", c.baseTopic(), id)
}

func (c *MQTTClient) LightBrightnessTopic(id string) string {
	return fmt.Sprintf("%s/light/%s/brightness", c.baseTopic(), id)
}

func (c *MQTTClient) LightCommandTopic(id string) string {
	return fmt.Sprintf("%s/light/%s/%s", c.baseTopic(), id, MQTT_COMMAND_SET)
}

func (c *MQTTClient) SensorStateTopic(id string) string {
	return fmt.Sprintf("%s/sensor/%s/state", c.baseTopic(), id)
}

func (c *MQTTClient) BinarySensorStateTopic(id string) string {
	return fmt.Sprintf("%s/binary_sensor/%s/state", c.baseTopic(), id)
}

// HADiscoveryTopic is <ha_discovery_topic>/<component>/<device_id>/<object_id>/config.
func (c *MQTTClient) HADiscoveryTopic(component, deviceId, objectId string) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", c.cfg.HADiscoveryTopic, component, deviceId, objectId)
}

func (c *MQTTClient) ParseMQTTCommand(msg mqtt.Message) (*ParsedMQTTCommand, error) {
	return c.parseCommand(msg.Topic(), string(msg.Payload()))
}

func (c *MQTTClient) parseCommand(topic, payload string) (*ParsedMQTTCommand, error) {
	coverCmd, err := c.parseCoverCommand(topic, payload)
	if err == nil {
		return coverCmd, nil
	}
	if !errors.Is(err, ErrInvalidCommand) {
		return nil, err
	}
	return c.parseLightCommand(topic, payload)
}

func (c *MQTTClient) parseCoverCommand(topic, payload string) (*ParsedMQTTCommand, error) {
	matches := c.coverCommandRegexp.FindStringSubmatch(topic)
	if len(matches) != 3 {
		return nil, ErrInvalidCommand
	}
	payload = strings.TrimSpace(payload)
	switch matches[2] {
	case MQTT_COMMAND_SET:
		switch strings.ToUpper(payload) {
		case MQTT_PAYLOAD_OPEN, MQTT_PAYLOAD_CLOSE, MQTT_PAYLOAD_STOP:
		default:
			return nil, fmt.Errorf("%w: %q", ErrInvalidPayload, payload)
		}
		payload = strings.ToUpper(payload)
	case MQTT_COMMAND_SET_POSITION:
		// try to parse a valid position
		position, err := strconv.Atoi(payload)
		if err != nil || position < 0 || position > 100 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPayload, payload)
		}
	}
	return &ParsedMQTTCommand{
		Component: "cover",
		ObjectId:  matches[1],
		Command:   matches[2],
		Payload:   payload,
	}, nil
}

func (c *MQTTClient) parseLightCommand(topic, payload string) (*ParsedMQTTCommand, error) {
	matches := c.lightCommandRegexp.FindStringSubmatch(topic)
	if len(matches) != 2 {
		return nil, ErrInvalidCommand
	}
	payload = strings.ToUpper(strings.TrimSpace(payload))
	if payload != MQTT_PAYLOAD_ON && payload != MQTT_PAYLOAD_OFF {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPayload, payload)
	}
	return &ParsedMQTTCommand{
		Component: "light",
		ObjectId:  matches[1],
		Command:   MQTT_COMMAND_SET,
		Payload:   payload,
	}, nil
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	token := c.client.Publish(topic, qos, retain, payload)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT publish timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) SubscribeToCommandTopics(handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	token := c.client.SubscribeMultiple(c.commandTopics(), handler)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT subscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	token := c.client.Connect()
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT connect timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Disconnect(timeout time.Duration) {
	c.client.Disconnect(uint(timeout.Milliseconds()))
}

// commandTopics leaves out the state topics the bridge publishes itself.
func (c *MQTTClient) commandTopics() map[string]byte {
	return map[string]byte{
		c.CoverCommandTopic("+"):     1,
		c.CoverSetPositionTopic("+"): 1,
		c.LightCommandTopic("+"):     1,
	}
}

func coverCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/cover/([a-z0-9_-]+)/(%s|%s)$", regexp.QuoteMeta(baseTopic),
		MQTT_COMMAND_SET, MQTT_COMMAND_SET_POSITION))
}

func lightCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/light/([a-z0-9_-]+)/%s$", regexp.QuoteMeta(baseTopic), MQTT_COMMAND_SET))
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}
