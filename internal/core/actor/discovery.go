package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/config"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/events"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/service"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

const (
	discoveryHealthTimeout = 2 * time.Second
	discoveryMargin        = 5 * time.Second
)

var ErrDiscoveryDependency = errors.New("gateway actor or mqtt actor are not healthy")

// DiscoveryActor enumerates the gateway entities and hands them to the poller
// and, when enabled, to the MQTT actor as HA discovery payloads.
type DiscoveryActor struct {
	config       *config.Config
	behavior     actor.Behavior
	stash        *actorutil.Stash
	gatewayActor *actor.PID
	mqttActor    *actor.PID
	pollerActor  *actor.PID

	gatewayActorHealthy bool
	mqttActorHealthy    bool
	healthyRecv         int

	discovered  int
	lastError   error

	logger *zap.Logger
}

func NewDiscoveryActor(config *config.Config, gatewayActor, mqttActor, pollerActor *actor.PID, logger *zap.Logger) *DiscoveryActor {
	act := &DiscoveryActor{
		config:       config,
		gatewayActor: gatewayActor,
		mqttActor:    mqttActor,
		pollerActor:  pollerActor,
		behavior:     actor.NewBehavior(),
		stash:        &actorutil.Stash{},
		logger:       actorutil.ActorLogger(domain.ACTOR_ID_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *DiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *DiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("discovery@starting started")
		state.checkDependencies(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("discovery@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *DiscoveryActor) checkDependencies(ctx actor.Context) {
	state.healthyRecv = 0
	state.gatewayActorHealthy = false
	state.mqttActorHealthy = false
	// Gateway Actor Request
	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.gatewayActor, domain.ActorHealthRequest{}, discoveryHealthTimeout), func(err error) any {
		return domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_CENTRALCONTROL,
			Healthy: false,
		}
	})
	// MQTT Actor Request
	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, discoveryHealthTimeout), func(err error) any {
		return domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: false,
		}
	})
	state.behavior.Become(state.WaitingHealthyReceive)
}

func (state *DiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("discovery@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.healthyRecv++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_CENTRALCONTROL:
				state.gatewayActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.mqttActorHealthy = true
			}
		}
		if state.healthyRecv == 2 {
			if !state.gatewayActorHealthy || !state.mqttActorHealthy {
				panic(ErrDiscoveryDependency)
			}
			state.discover(ctx)
		}
	default:
		state.logger.Debug("discovery@healthcheck: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *DiscoveryActor) discover(ctx actor.Context) {
	opts := service.OptionsFromClientConfig(state.config.CentralControl.ClientConfig())
	timeout := state.config.CentralControl.Timeout() + discoveryMargin
	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.gatewayActor, domain.DiscoverEntitiesRequest{Options: opts}, timeout), func(err error) any {
		return domain.DiscoverEntitiesResponse{
			ActorResponseMixIn: domain.ErrorResponse(err),
		}
	})
	state.behavior.Become(state.DiscoveringReceive)
	state.stash.UnstashAll(ctx)
}

func (state *DiscoveryActor) DiscoveringReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.DiscoverEntitiesResponse:
		if msg.HasResponseError() {
			state.lastError = msg.GetResponseError()
			state.logger.Error("discovery@discovering: setup failed", zap.Error(state.lastError))
			state.behavior.Become(state.IdleReceive)
			return
		}
		set := msg.Entities
		state.logger.Info("discovery@discovering: entities discovered",
			zap.Int("covers", len(set.Covers)), zap.Int("lights", len(set.Lights)), zap.Int("sensors", len(set.Sensors)))

		ctx.Send(state.pollerActor, domain.EntitiesDiscovered{Entities: set})
		if state.config.MQTT.HADiscoveryEnable {
			ctx.Send(state.mqttActor, events.DiscoveryRequest(state.config.MQTT.BaseTopic, set))
		}
		state.lastError = nil
		state.discovered = set.Len()
		state.behavior.Become(state.IdleReceive)
	case domain.ActorHealthRequest:
		state.respondHealth(ctx, "discovering")
	case domain.RediscoverRequest:
		state.logger.Debug("discovery@discovering: already running")
	default:
		state.logger.Debug("discovery@discovering: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *DiscoveryActor) IdleReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.respondHealth(ctx, "idle")
	case domain.RediscoverRequest:
		state.logger.Info("discovery@idle: rediscover")
		state.checkDependencies(ctx)
	default:
		state.logger.Debug("discovery@idle: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *DiscoveryActor) respondHealth(ctx actor.Context, name string) {
	healthy := state.lastError == nil
	desc := fmt.Sprintf("%s, %d entities", name, state.discovered)
	if !healthy {
		desc = fmt.Sprintf("%s, setup failed: %s", name, state.lastError)
	}
	ctx.Respond(domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_DISCOVERY,
		Healthy: healthy,
		State:   desc,
	})
}
