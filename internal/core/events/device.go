package events

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gosimple/slug"
)

const (
	SENSOR_ID_BRIDGE_STATE    = "bridge"
	COMPONENT_COVER           = "cover"
	COMPONENT_LIGHT           = "light"
	COMPONENT_SENSOR          = "sensor"
	COMPONENT_BINARY_SENSOR   = "binary_sensor"
	DEVICE_CLASS_CONNECTIVITY = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC   = "diagnostic"
)

func BridgeDevice(baseTopic string) domain.Device {
	return domain.Device{
		Id:           fmt.Sprintf("becker_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: centralcontrol.Manufacturer,
		Model:        "CentralControl bridge",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("CentralControl %s", md5HashShort(baseTopic)),
	}
}

// ItemDevice describes the gateway item behind one or more entities.
func ItemDevice(bridge domain.Device, deviceId string, item centralcontrol.Item) domain.Device {
	model := item.DeviceType
	if model == "" {
		model = item.RemoteType
	}
	return domain.Device{
		Id:           ObjectId("becker_" + deviceId),
		Name:         item.DisplayName(),
		Model:        model,
		Manufacturer: centralcontrol.Manufacturer,
		ViaDevice:    bridge.Id,
	}
}

func BridgeSensors(bridgeDevice domain.Device) []domain.GenericSensor {
	return []domain.GenericSensor{{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     COMPONENT_BINARY_SENSOR,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       fmt.Sprintf("uid_%s_%s", bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	}}
}

// ObjectId is the topic-safe form of a unique id.
func ObjectId(uniqueId string) string {
	return slug.Make(uniqueId)
}

func md5HashShort(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])[0:8]
}
