package actor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/config"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/mqtt"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type MQTTActor struct {
	config         *config.Config
	behavior       actor.Behavior
	stash          *actorutil.Stash
	client         *mqtt.MQTTClient
	eventStream    *eventstream.EventStream
	eventStreamSub *eventstream.Subscription
	logger         *zap.Logger

	// only set on test actors
	recorder *MessageRecorder
}

type MQTTConnected struct {
}

type MQTTSubscribed struct {
}

type MQTTConnectionLost struct {
	Error error
}

type publishResult struct {
	ReplyTo *actor.PID
	Error   error
}

type ParsedCommand struct {
	Command *mqtt.ParsedMQTTCommand
}

type rawMessage struct {
	topic   string
	message string
	retain  bool
}

func NewMQTTActor(config *config.Config, eventStream *eventstream.EventStream, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:      config,
		eventStream: eventStream,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MQTTActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MQTTActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("mqtt@starting started")

		// create MQTT client
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), func(_ pahomqtt.Client) {
		}, func(_ pahomqtt.Client, err error) {
			ctx.Send(ctx.Self(), MQTTConnectionLost{Error: err})
		})

		// connect to MQTT server
		state.client.Connect(func(err error) {
			if err != nil {
				ctx.Send(ctx.Self(), MQTTConnectionLost{Error: err})
			} else {
				ctx.Send(ctx.Self(), MQTTConnected{})
			}
		}, 10*time.Second)

	case MQTTConnected:
		state.logger.Debug("mqtt@starting connected")

		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_ONLINE, 0, true, func(error) {}, 500*time.Millisecond)

		state.subscribeEventStream(ctx)

		// subscribe to MQTT command topics
		state.client.SubscribeToCommandTopics(func(c pahomqtt.Client, m pahomqtt.Message) {
			cmd, err := state.client.ParseMQTTCommand(m)
			if err != nil {
				state.logger.Debug("mqtt: ignoring message", zap.String("topic", m.Topic()), zap.Error(err))
				return
			}
			ctx.Send(ctx.Self(), ParsedCommand{Command: cmd})
		}, func(err error) {
			if err != nil {
				ctx.Send(ctx.Self(), MQTTConnectionLost{Error: err})
			} else {
				ctx.Send(ctx.Self(), MQTTSubscribed{})
			}
		}, 1*time.Second)
	case MQTTSubscribed:
		// init completed, transition to default state
		state.logger.Debug("mqtt@starting subscribed")
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@starting connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Restarting:
		state.stop()
	default:
		state.logger.Debug("mqtt@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Restarting:
		state.stop()
	case *actor.Stopping:
		state.stop()
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default ActorHealthRequest")
		// respond health check request
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case ParsedCommand:
		// route command to parent
		state.logger.Debug("mqtt@default parsedCommand", zap.Any("command", msg.Command))
		ctx.Send(ctx.Parent(), msg)
	case domain.PublishMessageRequest:
		state.logger.Debug("mqtt@default PublishMessageRequest", zap.Any("message", msg))
		state.publishMessage(ctx, msg.Topic, msg.Payload, msg.Retain, actorutil.ForRequest(msg).ReplyTo(ctx))
	case domain.PublishStateUpdateRequest:
		// receive message from event bus and publish to MQTT
		state.logger.Debug("mqtt@default PublishStateUpdateRequest", zap.String("type", fmt.Sprintf("%T", msg.Event)))
		state.publishStateUpdate(ctx, msg.Event, msg.Retain)
	case domain.PublishDiscoveryRequest:
		state.logger.Debug("mqtt@default PublishHADiscovery")
		err := state.PublishHomeAssistantDiscovery(msg)
		if err != nil {
			state.logger.Error("mqtt@default PublishHADiscovery error", zap.Error(err))
		}
		actorutil.ForRequest(msg).Respond(ctx, domain.PublishDiscoveryResponse{
			ActorResponseMixIn: domain.ErrorResponse(err),
		})
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@default connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	default:
		state.logger.Debug("mqtt@default unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MQTTActor) subscribeEventStream(ctx actor.Context) {
	if state.eventStream == nil || state.eventStreamSub != nil {
		return
	}
	self := ctx.Self()
	root := ctx.ActorSystem().Root
	state.eventStreamSub = state.eventStream.Subscribe(func(value any) {
		if ev, ok := value.(domain.StateUpdateEvent); ok {
			root.Send(self, domain.PublishStateUpdateRequest{Event: ev})
		}
	})
}

func (state *MQTTActor) event2MQTTMessages(event domain.StateUpdateEvent) []rawMessage {
	switch msg := event.(type) {
	case domain.CoverStateUpdateEvent:
		messages := []rawMessage{{
			topic:   state.client.CoverPositionTopic(msg.Id),
			message: strconv.Itoa(msg.Position),
		}}
		var payload string
		switch {
		case msg.Closed != nil && *msg.Closed:
			payload = mqtt.MQTT_STATE_CLOSED
		case msg.Closed != nil:
			payload = mqtt.MQTT_STATE_OPEN
		case msg.Intermediate:
			// replaces a stale open or closed
			payload = mqtt.MQTT_STATE_STOPPED
		}
		if payload != "" {
			messages = append(messages, rawMessage{
				topic:   state.client.CoverStateTopic(msg.Id),
				message: payload,
			})
		}
		return messages
	case domain.LightStateUpdateEvent:
		messages := []rawMessage{{
			topic:   state.client.LightStateTopic(msg.Id),
			message: bool2MQTTPayload(msg.On),
		}}
		if msg.Brightness != nil {
			messages = append(messages, rawMessage{
				topic:   state.client.LightBrightnessTopic(msg.Id),
				message: strconv.Itoa(*msg.Brightness),
			})
		}
		return messages
	case domain.FloatSensorUpdateEvent:
		return []rawMessage{{
			topic:   state.client.SensorStateTopic(msg.Id),
			message: strconv.FormatFloat(msg.Value, 'f', int(msg.Decimals), 64),
		}}
	case domain.TextSensorUpdateEvent:
		return []rawMessage{{
			topic:   state.client.SensorStateTopic(msg.Id),
			message: msg.Value,
		}}
	case domain.BridgeStateUpdateEvent:
		payload := mqtt.MQTT_PAYLOAD_OFFLINE
		if msg.Value {
			payload = mqtt.MQTT_PAYLOAD_ONLINE
		}
		return []rawMessage{{
			topic:   state.client.BridgeStateTopic(),
			message: payload,
			retain:  true,
		}}
	default:
		return nil
	}
}

func (state *MQTTActor) publishStateUpdate(ctx actor.Context, event domain.StateUpdateEvent, retain bool) {
	messages := state.event2MQTTMessages(event)
	if len(messages) == 0 {
		return
	}
	for _, msg := range messages {
		state.logger.Sugar().Debugf("mqtt@publish: state publish %s => %s", msg.topic, msg.message)
		state.client.Publish(msg.topic, msg.message, 1, msg.retain || retain, func(err error) {
			ctx.Send(ctx.Self(), publishResult{Error: err})
		}, 5*time.Second)
	}
	if state.recorder != nil {
		state.recorder.record(messages)
	}
	state.behavior.BecomeStacked(state.eventPublishResultReceive(len(messages)))
}

func (state *MQTTActor) publishMessage(ctx actor.Context, topic, payload string, retain bool, replyTo *actor.PID) {
	state.logger.Sugar().Debugf("mqtt@publish: message publish %s => %s", topic, payload)
	state.client.Publish(topic, payload, 1, retain, func(err error) {
		ctx.Send(ctx.Self(), publishResult{ReplyTo: replyTo, Error: err})
	}, 5*time.Second)
	state.behavior.BecomeStacked(state.MessagePublishResultReceive)
}

func (state *MQTTActor) MessagePublishResultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case publishResult:
		// log error and return to default state
		if msg.Error != nil {
			state.logger.Error("mqtt@publishing could not publish a message", zap.Error(msg.Error))
		}
		if msg.ReplyTo != nil {
			ctx.Send(msg.ReplyTo, domain.PublishMessageResponse{
				ActorResponseMixIn: domain.ErrorResponse(msg.Error),
			})
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("mqtt@publishing stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// eventPublishResultReceive waits for the publish results of one state update.
func (state *MQTTActor) eventPublishResultReceive(pending int) actor.ReceiveFunc {
	return func(ctx actor.Context) {
		switch msg := ctx.Message().(type) {
		case publishResult:
			if msg.Error != nil {
				state.logger.Error("mqtt@publishing could not publish a message", zap.Error(msg.Error))
			}
			pending--
			if pending > 0 {
				return
			}
			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		default:
			state.logger.Debug("mqtt@publishing stash", zap.String("type", fmt.Sprintf("%T", msg)))
			state.stash.Stash(ctx, msg)
		}
	}
}

func (state *MQTTActor) discoveryMessages(req domain.PublishDiscoveryRequest) ([]rawMessage, error) {
	var messages []rawMessage
	add := func(topic string, cfg mqtt.HADiscoveryConfig) error {
		payload, err := json.Marshal(cfg)
		if err != nil {
			return err
		}
		messages = append(messages, rawMessage{topic: topic, message: string(payload), retain: true})
		return nil
	}
	for _, cover := range req.Covers {
		if err := add(mqtt.HADiscoveryCoverTopic(state.client, cover), mqtt.GenericCoverToHADiscoveryMessage(state.client, cover)); err != nil {
			return nil, err
		}
	}
	for _, light := range req.Lights {
		if err := add(mqtt.HADiscoveryLightTopic(state.client, light), mqtt.GenericLightToHADiscoveryMessage(state.client, light)); err != nil {
			return nil, err
		}
	}
	for _, sensor := range req.Sensors {
		if err := add(mqtt.HADiscoverySensorTopic(state.client, sensor), mqtt.GenericSensorToHADiscoveryMessage(state.client, sensor)); err != nil {
			return nil, err
		}
	}
	return messages, nil
}

func (state *MQTTActor) PublishHomeAssistantDiscovery(req domain.PublishDiscoveryRequest) error {
	messages, err := state.discoveryMessages(req)
	if err != nil {
		return err
	}
	for _, msg := range messages {
		state.client.Publish(msg.topic, msg.message, 0, msg.retain, func(err error) {
			if err != nil {
				state.logger.Warn("mqtt: discovery publish failed", zap.Error(err))
			}
		}, 1*time.Second)
	}
	return nil
}

func (state *MQTTActor) stop() {
	state.logger.Debug("mqtt: disconnect")
	if state.eventStreamSub != nil {
		state.eventStream.Unsubscribe(state.eventStreamSub)
		state.eventStreamSub = nil
	}
	if state.client != nil {
		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_OFFLINE, 0, true, func(error) {}, 500*time.Millisecond)
		state.client.Disconnect(500 * time.Millisecond)
	}
}

func bool2MQTTPayload(value bool) string {
	if value {
		return mqtt.MQTT_PAYLOAD_ON
	}
	return mqtt.MQTT_PAYLOAD_OFF
}

// MessageRecorder keeps what a test MQTT actor would have published.
type MessageRecorder struct {
	mu        sync.Mutex
	messages  map[string]string
	discovery []domain.PublishDiscoveryRequest
}

func NewMessageRecorder() *MessageRecorder {
	return &MessageRecorder{messages: map[string]string{}}
}

// Message returns the last payload recorded on topic.
func (r *MessageRecorder) Message(topic string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, ok := r.messages[topic]
	return payload, ok
}

func (r *MessageRecorder) Discovery() []domain.PublishDiscoveryRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.PublishDiscoveryRequest(nil), r.discovery...)
}

func (r *MessageRecorder) record(messages []rawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range messages {
		r.messages[msg.topic] = msg.message
	}
}

func (r *MessageRecorder) recordDiscovery(req domain.PublishDiscoveryRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.discovery = append(r.discovery, req)
}

// Dummy actor
func NewTestMQTTActor(config *config.Config, eventStream *eventstream.EventStream, recorder *MessageRecorder, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:      config,
		eventStream: eventStream,
		recorder:    recorder,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.DummyReceive)
	return act
}

func (state *MQTTActor) DummyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), nil, nil)
		state.subscribeEventStream(ctx)
	case *actor.Stopping:
		if state.eventStreamSub != nil {
			state.eventStream.Unsubscribe(state.eventStreamSub)
			state.eventStreamSub = nil
		}
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@dummy ActorHealthRequest")
		// respond health check request
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case ParsedCommand:
		ctx.Send(ctx.Parent(), msg)
	case domain.PublishStateUpdateRequest:
		state.recorder.record(state.event2MQTTMessages(msg.Event))
		actorutil.ForRequest(msg).Respond(ctx, domain.PublishStateUpdateResponse{})
	case domain.PublishDiscoveryRequest:
		messages, err := state.discoveryMessages(msg)
		state.recorder.record(messages)
		state.recorder.recordDiscovery(msg)
		actorutil.ForRequest(msg).Respond(ctx, domain.PublishDiscoveryResponse{
			ActorResponseMixIn: domain.ErrorResponse(err),
		})
	case domain.PublishMessageRequest:
		state.recorder.record([]rawMessage{{topic: msg.Topic, message: msg.Payload, retain: msg.Retain}})
		actorutil.ForRequest(msg).Respond(ctx, domain.PublishMessageResponse{})
	}
}
