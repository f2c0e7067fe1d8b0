package actor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/config"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/mqtt"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/util"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMQTTActor(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()

	context := as.Root

	es := eventstream.EventStream{}
	recorder := NewMessageRecorder()

	props := actor.PropsFromProducer(func() actor.Actor { return NewTestMQTTActor(&cfg, &es, recorder, logger) })
	pid := context.Spawn(props)

	result, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	require.NoError(t, err)
	resp, ok := result.(domain.ActorHealthResponse)
	assert.True(ok)
	assert.True(resp.Healthy)

	es.Publish(domain.CoverStateUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "becker_12"},
		Position:              30,
		Intermediate:          true,
	})
	es.Publish(domain.CoverStateUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "becker_21"},
		Position:              100,
	})
	es.Publish(domain.CoverStateUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "becker_7"},
		Position:              0,
		Closed:                lo.ToPtr(true),
	})
	es.Publish(domain.LightStateUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "becker_3"},
		On:                    true,
		Brightness:            lo.ToPtr(140),
	})
	es.Publish(domain.FloatSensorUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "becker_30_sun"},
		Value:                 12.34,
		Decimals:              1,
	})
	es.Publish(domain.TextSensorUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "becker_30_rain"},
		Value:                 "dry",
	})
	es.Publish(domain.BridgeStateUpdateEvent{Value: false})

	assert.Eventually(func() bool {
		_, ok := recorder.Message("becker/bridge/state")
		return ok
	}, 2*time.Second, 20*time.Millisecond)

	expected := map[string]string{
		"becker/cover/becker_12/position":    "30",
		"becker/cover/becker_12/state":       "stopped",
		"becker/cover/becker_21/position":    "100",
		"becker/cover/becker_7/position":     "0",
		"becker/cover/becker_7/state":        "closed",
		"becker/light/becker_3/state":        "ON",
		"becker/light/becker_3/brightness":   "140",
		"becker/sensor/becker_30_sun/state":  "12.3",
		"becker/sensor/becker_30_rain/state": "dry",
		"becker/bridge/state":                "offline",
	}
	for topic, payload := range expected {
		got, ok := recorder.Message(topic)
		assert.True(ok, topic)
		assert.Equal(payload, got, topic)
	}
	// covers without end positions never get a state
	_, ok = recorder.Message("becker/cover/becker_21/state")
	assert.False(ok)

	context.Stop(pid)
}

func TestMQTTActorCoverLeavesEndPosition(t *testing.T) {

	cfg := util.LoadTestConfig()
	logger := zap.NewNop()

	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()

	es := eventstream.EventStream{}
	recorder := NewMessageRecorder()
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor { return NewTestMQTTActor(&cfg, &es, recorder, logger) }))
	defer as.Root.Stop(pid)

	_, err := as.Root.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	require.NoError(t, err)

	es.Publish(domain.CoverStateUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "becker_12"},
		Position:              0,
		Closed:                lo.ToPtr(true),
	})
	es.Publish(domain.CoverStateUpdateEvent{
		StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "becker_12"},
		Position:              50,
		Intermediate:          true,
	})

	assert.Eventually(t, func() bool {
		got, _ := recorder.Message("becker/cover/becker_12/position")
		return got == "50"
	}, 2*time.Second, 20*time.Millisecond)
	got, _ := recorder.Message("becker/cover/becker_12/state")
	assert.Equal(t, mqtt.MQTT_STATE_STOPPED, got)
}

// newOfflineMQTTActor publishes through a client that never connected, so every
// publish completes with an error right away.
func newOfflineMQTTActor(cfg *config.Config, recorder *MessageRecorder, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:   cfg,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		client:   mqtt.CreateMQTTClient(cfg, mqtt.OptsFromConfig(cfg), nil, nil),
		recorder: recorder,
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func TestMQTTActorPublishesStashedUpdates(t *testing.T) {

	cfg := util.LoadTestConfig()
	logger := zap.NewNop()

	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()

	recorder := NewMessageRecorder()
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor { return newOfflineMQTTActor(&cfg, recorder, logger) }))
	defer as.Root.Stop(pid)

	update := func(position int) domain.PublishStateUpdateRequest {
		return domain.PublishStateUpdateRequest{Event: domain.CoverStateUpdateEvent{
			StateUpdateEventMixIn: domain.StateUpdateEventMixIn{Id: "becker_12"},
			Position:              position,
			Intermediate:          true,
		}}
	}

	as.Root.Send(pid, update(10))
	health := as.Root.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second)
	as.Root.Send(pid, update(20))
	as.Root.Send(pid, update(30))

	_, err := health.Result()
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		got, _ := recorder.Message("becker/cover/becker_12/position")
		return got == "30"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMQTTActorDiscovery(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	logger := zap.NewNop()

	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()

	recorder := NewMessageRecorder()
	props := actor.PropsFromProducer(func() actor.Actor { return NewTestMQTTActor(&cfg, nil, recorder, logger) })
	pid := as.Root.Spawn(props)

	device := domain.Device{Id: "becker_12", Name: "Living room"}
	req := domain.PublishDiscoveryRequest{
		Covers: []domain.GenericCover{{Device: device, Id: "becker_12", Name: "Living room", UniqueId: "becker_12", DeviceClass: "shutter", SetPosition: true}},
		Lights: []domain.GenericLight{{Device: device, Id: "becker_3", Name: "Garden", UniqueId: "becker_3", Brightness: true}},
	}
	result, err := as.Root.RequestFuture(pid, req, 2*time.Second).Result()
	require.NoError(t, err)
	resp, ok := result.(domain.PublishDiscoveryResponse)
	require.True(t, ok)
	assert.NoError(resp.GetResponseError())

	payload, ok := recorder.Message("homeassistant/cover/becker_12/becker_12/config")
	require.True(t, ok)
	var cover map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &cover))
	assert.Equal("becker/cover/becker_12/set_position", cover["set_position_topic"])

	_, ok = recorder.Message("homeassistant/light/becker_12/becker_3/config")
	assert.True(ok)
	assert.Len(recorder.Discovery(), 1)
}

func TestMQTTActorRoutesCommandsToParent(t *testing.T) {

	cfg := util.LoadTestConfig()
	logger := zap.NewNop()

	as := actorutil.NewActorSystemWithZapLogger(logger)
	defer as.Shutdown()

	commands := make(chan ParsedCommand, 1)
	parent := as.Root.Spawn(actor.PropsFromFunc(func(ctx actor.Context) {
		switch msg := ctx.Message().(type) {
		case *actor.Started:
			child := ctx.Spawn(actor.PropsFromProducer(func() actor.Actor {
				return NewTestMQTTActor(&cfg, nil, NewMessageRecorder(), logger)
			}))
			ctx.Send(child, ParsedCommand{})
		case ParsedCommand:
			commands <- msg
		}
	}))
	defer as.Root.Stop(parent)

	select {
	case <-commands:
	case <-time.After(2 * time.Second):
		t.Fatal("command was not routed to parent")
	}
}
