package events

import (
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/service"
)

// EntityUpdateEvents returns the state update events of an entity. Entities
// without a known state yield none.
func EntityUpdateEvents(entity service.Entity) []domain.StateUpdateEvent {
	mixIn := domain.StateUpdateEventMixIn{Id: ObjectId(entity.UniqueId())}

	switch e := entity.(type) {
	case *service.Cover:
		position, ok := e.Position()
		if !ok {
			return nil
		}
		closed := e.IsClosed()
		return []domain.StateUpdateEvent{domain.CoverStateUpdateEvent{
			StateUpdateEventMixIn: mixIn,
			Position:              position,
			Closed:                closed,
			Intermediate:          closed == nil && e.ReportsEndPositions(),
		}}
	case *service.Light:
		on := e.IsOn()
		if on == nil {
			return nil
		}
		ev := domain.LightStateUpdateEvent{
			StateUpdateEventMixIn: mixIn,
			On:                    *on,
		}
		if brightness, ok := e.Brightness(); ok && e.ColorMode() == service.ColorModeBrightness {
			ev.Brightness = &brightness
		}
		return []domain.StateUpdateEvent{ev}
	case *service.Sensor:
		switch value := e.NativeValue().(type) {
		case string:
			return []domain.StateUpdateEvent{domain.TextSensorUpdateEvent{
				StateUpdateEventMixIn: mixIn,
				Value:                 value,
			}}
		case float64:
			return []domain.StateUpdateEvent{domain.FloatSensorUpdateEvent{
				StateUpdateEventMixIn: mixIn,
				Value:                 value,
				Decimals:              1,
			}}
		}
	}
	return nil
}

func BridgeStateUpdateEvent(online bool) domain.StateUpdateEvent {
	return domain.BridgeStateUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: SENSOR_ID_BRIDGE_STATE},
		Value:                 online,
	}
}
