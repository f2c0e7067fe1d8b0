package actor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	adactor "github.com/DominikStarke/becker-centralcontrol-has/internal/adapter/actor"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/config"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

const childHealthTimeout = 500 * time.Millisecond

type MQTTActorProvider func(*eventstream.EventStream) *adactor.MQTTActor

type CentralControlActorProvider func() *adactor.CentralControlActor

// MasterActor supervises the gateway, MQTT, poller and discovery actors and
// routes requests between them.
type MasterActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *actorutil.Stash

	currentHealthCheck   healthCheckResult
	eventStream          *eventstream.EventStream
	gatewayActor         *actor.PID
	mqttActor            *actor.PID
	pollerActor          *actor.PID
	discoveryActor       *actor.PID
	gatewayActorProvider CentralControlActorProvider
	mqttActorProvider    MQTTActorProvider
	logger               *zap.Logger
}

type healthCheckResult struct {
	responses      map[string]domain.ActorHealthResponse
	checksReceived int
	respondTo      *actor.PID
}

func NewMasterActor(config config.Config, gatewayActorProvider CentralControlActorProvider, mqttActorProvider MQTTActorProvider, logger *zap.Logger) *MasterActor {
	act := &MasterActor{
		config:               config,
		behavior:             actor.NewBehavior(),
		stash:                &actorutil.Stash{},
		logger:               actorutil.ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:          &eventstream.EventStream{},
		gatewayActorProvider: gatewayActorProvider,
		mqttActorProvider:    mqttActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck.reset()

		// start gateway child
		gatewayActorPID, err := state.spawnBackoff(ctx, domain.ACTOR_ID_CENTRALCONTROL, func() actor.Actor {
			return state.gatewayActorProvider()
		})
		if err != nil {
			panic(err)
		}
		state.gatewayActor = gatewayActorPID

		// start MQTT child
		mqttActorPID, err := state.spawnBackoff(ctx, domain.ACTOR_ID_MQTT, func() actor.Actor {
			return state.mqttActorProvider(state.eventStream)
		})
		if err != nil {
			panic(err)
		}
		state.mqttActor = mqttActorPID

		// start poller child
		pollerActorPID, err := state.startPollerActor(ctx)
		if err != nil {
			panic(err)
		}
		state.pollerActor = pollerActorPID

		// start discovery, retried with backoff until its dependencies are up
		discoveryActorPID, err := state.spawnBackoff(ctx, domain.ACTOR_ID_DISCOVERY, func() actor.Actor {
			return NewDiscoveryActor(&state.config, state.gatewayActor, state.mqttActor, state.pollerActor, state.logger)
		})
		if err != nil {
			panic(err)
		}
		state.discoveryActor = discoveryActorPID

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) children() map[string]*actor.PID {
	return map[string]*actor.PID{
		domain.ACTOR_ID_CENTRALCONTROL: state.gatewayActor,
		domain.ACTOR_ID_MQTT:           state.mqttActor,
		domain.ACTOR_ID_POLLER:         state.pollerActor,
		domain.ACTOR_ID_DISCOVERY:      state.discoveryActor,
	}
}

func (state *MasterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		for id, pid := range state.children() {
			actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(pid, domain.ActorHealthRequest{}, childHealthTimeout), func(err error) any {
				return domain.ActorHealthResponse{
					Id:      id,
					Healthy: false,
					State:   err.Error(),
				}
			})
		}

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case adactor.ParsedCommand:
		// redirect parsedCommand to the poller, which owns the entities
		state.logger.Debug("master@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command == nil {
			return
		}
		cmd, err := actorutil.ParsedMQTTCommandToCommand(*msg.Command)
		if err != nil {
			state.logger.Warn("master@default invalid command", zap.Error(err))
			return
		}
		ctx.Send(state.pollerActor, cmd)
	case domain.CoverCommandRequest, domain.LightCommandRequest:
		ctx.Forward(state.pollerActor)
	case domain.RediscoverRequest:
		state.logger.Debug("master@default RediscoverRequest")
		ctx.Forward(state.discoveryActor)
	case domain.GetItemListRequest:
		ctx.Forward(state.gatewayActor)
	case *actor.Terminated:
		// if the gateway actor gives up, terminate
		if msg.Who.Id == fmt.Sprintf("%s/%s", domain.ACTOR_ID_MASTER, domain.ACTOR_ID_CENTRALCONTROL) {
			state.logger.Error("master@default gateway actor terminated")
			panic(errors.New("gateway actor terminated"))
		}
	default:
		state.logger.Debug("master@default unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MasterActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		ctx.CancelReceiveTimeout()
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		state.currentHealthCheck.responses[msg.Id] = msg
		if state.currentHealthCheck.allReceived() {
			ctx.CancelReceiveTimeout()
			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) spawnBackoff(ctx actor.Context, name string, producer actor.Producer) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	props := actor.PropsFromProducer(producer, actor.WithSupervisor(supervisor))
	return ctx.SpawnNamed(props, name)
}

func (state *MasterActor) startPollerActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		state.logger.Error("master: restarting poller", zap.Any("reason", reason))
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(10, 10*time.Second, decider)

	pollerProps := actor.PropsFromProducer(func() actor.Actor {
		return NewPollerActor(&state.config, state.gatewayActor, state.eventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	return ctx.SpawnNamed(pollerProps, domain.ACTOR_ID_POLLER)
}

func (state *healthCheckResult) reset() {
	state.responses = map[string]domain.ActorHealthResponse{}
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == 4
}

func (state *healthCheckResult) allHealthy() bool {
	if !state.allReceived() {
		return false
	}
	for _, resp := range state.responses {
		if !resp.Healthy {
			return false
		}
	}
	return true
}

// summary lists the state of every child in a stable order.
func (state *healthCheckResult) summary() string {
	parts := make([]string, 0, len(state.responses))
	for id, resp := range state.responses {
		parts = append(parts, fmt.Sprintf("%s: %s", id, resp.State))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
		State:   state.summary(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
