package events

import (
	"context"
	"testing"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/service"
	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discover(t *testing.T) service.EntitySet {
	set, err := service.Discover(context.Background(), centralcontrol.CreateTestCentralControl(), service.Options{})
	require.NoError(t, err)
	return set
}

func TestDiscoveryRequest(t *testing.T) {

	assert := assert.New(t)

	req := DiscoveryRequest("becker", discover(t))
	bridge := BridgeDevice("becker")

	require.Len(t, req.Covers, 2)
	require.Len(t, req.Lights, 1)
	require.Len(t, req.Sensors, 4)

	shutter := req.Covers[0]
	assert.Equal("12", shutter.Id)
	assert.Equal("Living room", shutter.Name)
	assert.Equal("shutter", shutter.DeviceClass)
	assert.True(shutter.SetPosition)
	assert.False(shutter.Optimistic)
	assert.Equal("becker_12", shutter.Device.Id)
	assert.Equal(bridge.Id, shutter.Device.ViaDevice)
	assert.Equal(centralcontrol.Manufacturer, shutter.Device.Manufacturer)
	assert.Equal("awning", req.Covers[1].DeviceClass)

	assert.True(req.Lights[0].Brightness)

	assert.Equal(SENSOR_ID_BRIDGE_STATE, req.Sensors[0].Id)
	assert.Equal(COMPONENT_BINARY_SENSOR, req.Sensors[0].SensorType)
	sun := req.Sensors[1]
	assert.Equal("30-sun", sun.Id)
	assert.Equal("Weather Sun", sun.Name)
	assert.Equal("/ 15", sun.UnitOfMeasurement)
	assert.Equal("becker_30", sun.Device.Id)
	assert.Equal([]string{"dry", "rain"}, req.Sensors[3].Options)
}

func TestBridgeDeviceIsStablePerTopic(t *testing.T) {
	assert.Equal(t, BridgeDevice("becker").Id, BridgeDevice("becker").Id)
	assert.NotEqual(t, BridgeDevice("becker").Id, BridgeDevice("upstairs").Id)
}

func TestEntityUpdateEvents(t *testing.T) {

	assert := assert.New(t)

	set := discover(t)
	shutter, light := set.Covers[0], set.Lights[0]
	sun, rain := set.Sensors[0], set.Sensors[2]

	assert.Empty(EntityUpdateEvents(shutter))
	assert.Empty(EntityUpdateEvents(light))
	assert.Empty(EntityUpdateEvents(sun))

	shutter.ApplyState(centralcontrol.State{"value": 70.0})
	light.ApplyState(centralcontrol.State{"value": 55.0})
	state := centralcontrol.State{"value-sun": 12.34}
	sun.ApplyState(state)
	rain.ApplyState(state)

	assert.Equal([]domain.StateUpdateEvent{domain.CoverStateUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "12"},
		Position:              30,
		Intermediate:          true,
	}}, EntityUpdateEvents(shutter))

	lightEvents := EntityUpdateEvents(light)
	require.Len(t, lightEvents, 1)
	ev := lightEvents[0].(domain.LightStateUpdateEvent)
	assert.True(ev.On)
	require.NotNil(t, ev.Brightness)
	assert.Equal(55, *ev.Brightness)

	assert.Equal([]domain.StateUpdateEvent{domain.FloatSensorUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "30-sun"},
		Value:                 12.3,
		Decimals:              1,
	}}, EntityUpdateEvents(sun))
	assert.Empty(EntityUpdateEvents(rain))

	rain.ApplyState(centralcontrol.State{"value-rain": 1.0})
	assert.Equal([]domain.StateUpdateEvent{domain.TextSensorUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "30-rain"},
		Value:                 "rain",
	}}, EntityUpdateEvents(rain))
}

func TestClosedCoverEvent(t *testing.T) {

	set := discover(t)
	shutter := set.Covers[0]
	shutter.ApplyState(centralcontrol.State{"value": 100.0})

	evs := EntityUpdateEvents(shutter)
	require.Len(t, evs, 1)
	ev := evs[0].(domain.CoverStateUpdateEvent)
	assert.Equal(t, 0, ev.Position)
	require.NotNil(t, ev.Closed)
	assert.True(t, *ev.Closed)
}

func TestCoverLeavesEndPosition(t *testing.T) {

	assert := assert.New(t)

	set := discover(t)
	shutter := set.Covers[0]

	shutter.ApplyState(centralcontrol.State{"value": 100.0})
	closed := EntityUpdateEvents(shutter)[0].(domain.CoverStateUpdateEvent)
	assert.False(closed.Intermediate)

	shutter.ApplyState(centralcontrol.State{"value": 50.0})
	moved := EntityUpdateEvents(shutter)[0].(domain.CoverStateUpdateEvent)
	assert.Equal(50, moved.Position)
	assert.Nil(moved.Closed)
	assert.True(moved.Intermediate)

	centronic, ok := service.NewCover(centralcontrol.Item{
		Id:         21,
		DeviceType: string(centralcontrol.DeviceTypeShutter),
		Backend:    centralcontrol.BackendCentronic,
	}, service.Options{})
	require.True(t, ok)
	centronic.ApplyState(centralcontrol.State{"value": 100.0})
	ev := EntityUpdateEvents(centronic)[0].(domain.CoverStateUpdateEvent)
	assert.Nil(ev.Closed)
	assert.False(ev.Intermediate)
}

func TestObjectId(t *testing.T) {
	assert.Equal(t, "12", ObjectId("12"))
	assert.Equal(t, "30-sun", ObjectId("30-sun"))
	assert.Equal(t, "kitchen-left", ObjectId("Kitchen Left"))
}
