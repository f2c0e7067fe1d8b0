package events

import (
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/service"

	"github.com/samber/lo"
)

func CoverComponent(bridge domain.Device, c *service.Cover) domain.GenericCover {
	return domain.GenericCover{
		Device:      ItemDevice(bridge, c.DeviceId(), c.Item()),
		Id:          ObjectId(c.UniqueId()),
		Name:        c.Name(),
		UniqueId:    c.UniqueId(),
		DeviceClass: string(c.DeviceClass()),
		SetPosition: c.SupportedFeatures().Has(service.CoverFeatureSetPosition),
		Optimistic:  !c.ShouldPoll(),
	}
}

func LightComponent(bridge domain.Device, l *service.Light) domain.GenericLight {
	return domain.GenericLight{
		Device:     ItemDevice(bridge, l.DeviceId(), l.Item()),
		Id:         ObjectId(l.UniqueId()),
		Name:       l.Name(),
		UniqueId:   l.UniqueId(),
		Brightness: l.ColorMode() == service.ColorModeBrightness,
		Optimistic: !l.ShouldPoll(),
	}
}

func SensorComponent(bridge domain.Device, s *service.Sensor) domain.GenericSensor {
	desc := s.Description()
	return domain.GenericSensor{
		Device:            ItemDevice(bridge, s.DeviceId(), s.Item()),
		Id:                ObjectId(s.UniqueId()),
		SensorType:        COMPONENT_SENSOR,
		Name:              s.Name(),
		UniqueId:          s.UniqueId(),
		UnitOfMeasurement: desc.Unit,
		StateClass:        desc.StateClass,
		DeviceClass:       desc.DeviceClass,
		Icon:              desc.Icon,
		Options:           desc.Options,
	}
}

// DiscoveryRequest builds the discovery payload set for the bridge and every
// discovered entity.
func DiscoveryRequest(baseTopic string, set service.EntitySet) domain.PublishDiscoveryRequest {
	bridge := BridgeDevice(baseTopic)
	return domain.PublishDiscoveryRequest{
		Covers: lo.Map(set.Covers, func(c *service.Cover, _ int) domain.GenericCover {
			return CoverComponent(bridge, c)
		}),
		Lights: lo.Map(set.Lights, func(l *service.Light, _ int) domain.GenericLight {
			return LightComponent(bridge, l)
		}),
		Sensors: append(BridgeSensors(bridge), lo.Map(set.Sensors, func(s *service.Sensor, _ int) domain.GenericSensor {
			return SensorComponent(bridge, s)
		})...),
	}
}
