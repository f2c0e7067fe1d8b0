package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/config"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/events"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/service"
	. "github.com/DominikStarke/becker-centralcontrol-has/internal/util/actorutil"
	"github.com/DominikStarke/becker-centralcontrol-has/pkg/centralcontrol"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const pollerMargin = 3 * time.Second

var ErrUnsupportedCommand = errors.New("command not supported by entity")

// PollerActor owns the discovered entities. It refreshes their state on every
// tick and turns entity commands into gateway commands.
type PollerActor struct {
	behavior  actor.Behavior
	scheduler *scheduler.TimerScheduler

	gatewayActor *actor.PID
	config       *config.Config
	eventStream  *eventstream.EventStream

	entities map[string]service.Entity
	pending  int

	logger *zap.Logger
}

type pollTick struct {
}

func NewPollerActor(config *config.Config, gatewayActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *PollerActor {
	act := &PollerActor{
		config:       config,
		gatewayActor: gatewayActor,
		behavior:     actor.NewBehavior(),
		logger:       ActorLogger(domain.ACTOR_ID_POLLER, logger),
		eventStream:  eventStream,
		entities:     map[string]service.Entity{},
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *PollerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *PollerActor) StartingReceive(ctx actor.Context) {
	switch ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("poller@starting started")
		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.scheduleTick(ctx)
		state.behavior.Become(state.DefaultReceive)
	case *actor.Restarting:
	}
}

func (state *PollerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("poller@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: true,
			State:   fmt.Sprintf("idle, %d entities, %d pending", len(state.entities), state.pending),
		})
	case domain.EntitiesDiscovered:
		state.logger.Debug("poller@default EntitiesDiscovered", zap.Int("entities", msg.Entities.Len()))
		entities := make(map[string]service.Entity, msg.Entities.Len())
		for _, entity := range msg.Entities.Entities() {
			entities[events.ObjectId(entity.UniqueId())] = entity
		}
		state.entities = entities
		state.eventStream.Publish(events.BridgeStateUpdateEvent(true))
		state.pollAll(ctx)
	case pollTick:
		state.logger.Debug("poller@default tick")
		state.pollAll(ctx)
		// schedule next tick
		state.scheduleTick(ctx)
	case domain.GetStateResponse:
		state.pending--
		entity, ok := state.entities[msg.EntityId]
		if !ok {
			// entity set swapped while the request was in flight
			state.logger.Debug("poller@default GetStateResponse for unknown entity", zap.String("entity", msg.EntityId))
			return
		}
		if msg.HasResponseError() {
			state.logger.Error("poller@default GetStateResponse error", zap.String("entity", msg.EntityId), zap.Error(msg.GetResponseError()))
			return
		}
		if msg.Failure != centralcontrol.FailureNone {
			state.logger.Debug("poller@default GetStateResponse failure", zap.String("entity", msg.EntityId), zap.Stringer("reason", msg.Failure))
		}
		if entity.ApplyState(msg.State) {
			for _, ev := range events.EntityUpdateEvents(entity) {
				state.eventStream.Publish(ev)
			}
		}
	case domain.CoverCommandRequest:
		state.logger.Debug("poller@default CoverCommandRequest", zap.String("entity", msg.TargetId()), zap.String("action", string(msg.Action)))
		cover, ok := state.entities[msg.TargetId()].(*service.Cover)
		if !ok {
			state.rejectCommand(ctx, msg, msg.TargetId())
			return
		}
		var cmd centralcontrol.Command
		switch msg.Action {
		case domain.CoverActionOpen:
			cmd = cover.OpenCommand()
		case domain.CoverActionClose:
			cmd = cover.CloseCommand()
		case domain.CoverActionStop:
			cmd = cover.StopCommand()
		case domain.CoverActionSetPosition:
			cmd = cover.SetPositionCommand(msg.Position)
		default:
			ForRequest(msg).Respond(ctx, domain.EntityCommandResponse{
				ActorResponseMixIn: domain.ErrorResponse(fmt.Errorf("%w: %s", ErrUnsupportedCommand, msg.Action)),
				ObjectId:           msg.TargetId(),
			})
			return
		}
		state.sendCommand(ctx, msg, cmd)
	case domain.LightCommandRequest:
		state.logger.Debug("poller@default LightCommandRequest", zap.String("entity", msg.TargetId()), zap.Bool("on", msg.On))
		light, ok := state.entities[msg.TargetId()].(*service.Light)
		if !ok {
			state.rejectCommand(ctx, msg, msg.TargetId())
			return
		}
		cmd := light.TurnOffCommand()
		if msg.On {
			cmd = light.TurnOnCommand()
		}
		state.sendCommand(ctx, msg, cmd)
	case domain.SendCommandResponse:
		if msg.HasResponseError() {
			state.logger.Error("poller@default SendCommandResponse error", zap.String("entity", msg.EntityId), zap.Error(msg.GetResponseError()))
			return
		}
		if msg.Failure != centralcontrol.FailureNone {
			state.logger.Warn("poller@default command not delivered", zap.String("entity", msg.EntityId), zap.Stringer("reason", msg.Failure))
		}
		if entity, ok := state.entities[msg.EntityId]; ok && entity.ShouldPoll() {
			state.poll(ctx, msg.EntityId, entity)
		}
	default:
		state.logger.Debug("poller@default: unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *PollerActor) scheduleTick(ctx actor.Context) {
	state.scheduler.RequestOnce(state.config.MonitorConfig.PollInterval(), ctx.Self(), pollTick{})
}

func (state *PollerActor) requestTimeout() time.Duration {
	return state.config.CentralControl.Timeout() + pollerMargin
}

// pollAll issues one independent state request per pollable entity.
func (state *PollerActor) pollAll(ctx actor.Context) {
	for id, entity := range state.entities {
		if entity.ShouldPoll() {
			state.poll(ctx, id, entity)
		}
	}
}

func (state *PollerActor) poll(ctx actor.Context, id string, entity service.Entity) {
	state.pending++
	req := domain.GetStateRequest{EntityId: id, ItemId: entity.Item().Id}
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.gatewayActor, req, state.requestTimeout()), func(err error) any {
		return domain.GetStateResponse{
			ActorResponseMixIn: domain.ErrorResponse(err),
			EntityId:           id,
		}
	})
}

func (state *PollerActor) sendCommand(ctx actor.Context, req domain.EntityCommandRequest, cmd centralcontrol.Command) {
	id := req.TargetId()
	gwReq := domain.SendCommandRequest{EntityId: id, Command: cmd}
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.gatewayActor, gwReq, state.requestTimeout()), func(err error) any {
		return domain.SendCommandResponse{
			ActorResponseMixIn: domain.ErrorResponse(err),
			EntityId:           id,
		}
	})
	ForRequest(req).Respond(ctx, domain.EntityCommandResponse{ObjectId: id})
}

func (state *PollerActor) rejectCommand(ctx actor.Context, req domain.ActorRequest, id string) {
	err := fmt.Errorf("%w: %s", service.ErrUnknownEntity, id)
	state.logger.Warn("poller@default command rejected", zap.Error(err))
	ForRequest(req).Respond(ctx, domain.EntityCommandResponse{
		ActorResponseMixIn: domain.ErrorResponse(err),
		ObjectId:           id,
	})
}
