package mqtt

import (
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/events"
)

const (
	COLOR_MODE_ONOFF      = "onoff"
	COLOR_MODE_BRIGHTNESS = "brightness"
)

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice `json:"device"`
	StateTopic        string            `json:"state_topic,omitempty"`
	CommandTopic      string            `json:"command_topic,omitempty"`
	StateClass        string            `json:"state_class,omitempty"`
	DeviceClass       string            `json:"device_class,omitempty"`
	UnitOfMeasurement string            `json:"unit_of_measurement,omitempty"`
	AvTopic           string            `json:"availability_topic,omitempty"`
	EntityCategory    string            `json:"entity_category,omitempty"`
	Name              string            `json:"name"`
	UniqueId          string            `json:"unique_id"`
	Platform          string            `json:"platform"`
	EnabledByDefault  *bool             `json:"enabled_by_default,omitempty"`
	PayloadOn         string            `json:"payload_on,omitempty"`
	PayloadOff        string            `json:"payload_off,omitempty"`
	Icon              string            `json:"icon,omitempty"`
	Options           []string          `json:"options,omitempty"`
	Optimistic        bool              `json:"optimistic,omitempty"`

	// cover
	PayloadOpen      string `json:"payload_open,omitempty"`
	PayloadClose     string `json:"payload_close,omitempty"`
	PayloadStop      string `json:"payload_stop,omitempty"`
	StateOpen        string `json:"state_open,omitempty"`
	StateClosed      string `json:"state_closed,omitempty"`
	StateStopped     string `json:"state_stopped,omitempty"`
	PositionTopic    string `json:"position_topic,omitempty"`
	SetPositionTopic string `json:"set_position_topic,omitempty"`
	PositionOpen     *int   `json:"position_open,omitempty"`
	PositionClosed   *int   `json:"position_closed,omitempty"`

	// light
	BrightnessStateTopic string   `json:"brightness_state_topic,omitempty"`
	BrightnessScale      int      `json:"brightness_scale,omitempty"`
	SupportedColorModes  []string `json:"supported_color_modes,omitempty"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

func HADiscoverySensorTopic(client *MQTTClient, sensor domain.GenericSensor) string {
	return client.HADiscoveryTopic(sensor.SensorType, sensor.Device.Id, sensor.Id)
}

func HADiscoveryCoverTopic(client *MQTTClient, cover domain.GenericCover) string {
	return client.HADiscoveryTopic(events.COMPONENT_COVER, cover.Device.Id, cover.Id)
}

func HADiscoveryLightTopic(client *MQTTClient, light domain.GenericLight) string {
	return client.HADiscoveryTopic(events.COMPONENT_LIGHT, light.Device.Id, light.Id)
}

func GenericSensorToHADiscoveryMessage(client *MQTTClient, sensor domain.GenericSensor) HADiscoveryConfig {
	var topic string
	switch {
	case sensor.Id == events.SENSOR_ID_BRIDGE_STATE:
		topic = client.BridgeStateTopic()
	case sensor.SensorType == events.COMPONENT_BINARY_SENSOR:
		topic = client.BinarySensorStateTopic(sensor.Id)
	default:
		topic = client.SensorStateTopic(sensor.Id)
	}
	disConfig := HADiscoveryConfig{
		Device:            device(sensor.Device),
		StateTopic:        topic,
		StateClass:        sensor.StateClass,
		DeviceClass:       sensor.DeviceClass,
		UnitOfMeasurement: sensor.UnitOfMeasurement,
		AvTopic:           client.BridgeStateTopic(),
		EntityCategory:    sensor.EntityCategory,
		Name:              sensor.Name,
		UniqueId:          sensor.UniqueId,
		Icon:              sensor.Icon,
		Options:           sensor.Options,
		EnabledByDefault:  sensor.EnabledByDefault,
		Platform:          "mqtt",
	}
	if sensor.Id == events.SENSOR_ID_BRIDGE_STATE {
		disConfig.PayloadOn = MQTT_PAYLOAD_ONLINE
		disConfig.PayloadOff = MQTT_PAYLOAD_OFFLINE
	}
	return disConfig
}

func GenericCoverToHADiscoveryMessage(client *MQTTClient, cover domain.GenericCover) HADiscoveryConfig {
	disConfig := HADiscoveryConfig{
		Device:       device(cover.Device),
		StateTopic:   client.CoverStateTopic(cover.Id),
		CommandTopic: client.CoverCommandTopic(cover.Id),
		AvTopic:      client.BridgeStateTopic(),
		DeviceClass:  cover.DeviceClass,
		Name:         cover.Name,
		UniqueId:     cover.UniqueId,
		Platform:     "mqtt",
		Optimistic:   cover.Optimistic,
		PayloadOpen:  MQTT_PAYLOAD_OPEN,
		PayloadClose: MQTT_PAYLOAD_CLOSE,
		PayloadStop:  MQTT_PAYLOAD_STOP,
		StateOpen:    MQTT_STATE_OPEN,
		StateClosed:  MQTT_STATE_CLOSED,
		StateStopped: MQTT_STATE_STOPPED,
	}
	if cover.SetPosition {
		opened, closed := 100, 0
		disConfig.PositionTopic = client.CoverPositionTopic(cover.Id)
		disConfig.SetPositionTopic = client.CoverSetPositionTopic(cover.Id)
		disConfig.PositionOpen = &opened
		disConfig.PositionClosed = &closed
	}
	return disConfig
}

func GenericLightToHADiscoveryMessage(client *MQTTClient, light domain.GenericLight) HADiscoveryConfig {
	disConfig := HADiscoveryConfig{
		Device:       device(light.Device),
		StateTopic:   client.LightStateTopic(light.Id),
		CommandTopic: client.LightCommandTopic(light.Id),
		AvTopic:      client.BridgeStateTopic(),
		Name:         light.Name,
		UniqueId:     light.UniqueId,
		Platform:     "mqtt",
		Optimistic:   light.Optimistic,
		PayloadOn:    MQTT_PAYLOAD_ON,
		PayloadOff:   MQTT_PAYLOAD_OFF,
	}
	disConfig.SupportedColorModes = []string{COLOR_MODE_ONOFF}
	if light.Brightness {
		disConfig.BrightnessStateTopic = client.LightBrightnessTopic(light.Id)
		disConfig.BrightnessScale = 100
		disConfig.SupportedColorModes = []string{COLOR_MODE_BRIGHTNESS}
	}
	return disConfig
}

func device(d domain.Device) HADiscoveryDevice {
	return HADiscoveryDevice{
		Id:           []string{d.Id},
		Manufacturer: d.Manufacturer,
		Version:      d.Version,
		Model:        d.Model,
		Name:         d.Name,
		ViaDevice:    d.ViaDevice,
	}
}
