package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/port"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/service"
	"github.com/DominikStarke/becker-centralcontrol-has/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// taskMargin is added to the gateway timeout before a background call is
// abandoned.
const taskMargin = 2 * time.Second

// CentralControlActor runs gateway calls in background goroutines and replies
// to the requester once they complete. Calls are not serialized.
type CentralControlActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	gateway  port.CentralControl
	timeout  time.Duration
	inflight int
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewCentralControlActor(gateway port.CentralControl, timeout time.Duration, logger *zap.Logger) *CentralControlActor {
	act := &CentralControlActor{
		gateway:  gateway,
		timeout:  timeout,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_CENTRALCONTROL, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *CentralControlActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *CentralControlActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("centralcontrol@starting started")
		if state.gateway == nil {
			panic("centralcontrol: no gateway client")
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("centralcontrol@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *CentralControlActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("centralcontrol@default: ActorHealthRequest")
		healthState := "idle"
		if state.inflight > 0 {
			healthState = fmt.Sprintf("busy(%d)", state.inflight)
		}
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_CENTRALCONTROL,
			Healthy: true,
			State:   healthState,
		})
	case domain.GetItemListRequest:
		state.logger.Debug("centralcontrol@default: GetItemListRequest")
		runTask(state, ctx, actorutil.ForRequest(msg).ReplyTo(ctx), func() (*domain.GetItemListResponse, error) {
			resp, err := state.gateway.GetItemList(context.Background(), msg.Options)
			return &domain.GetItemListResponse{
				ActorResponseMixIn: domain.ErrorResponse(err),
				Items:              resp.Items(),
				Failure:            resp.Failure,
			}, nil
		}, func(err error) domain.GetItemListResponse {
			return domain.GetItemListResponse{ActorResponseMixIn: domain.ErrorResponse(err)}
		})
	case domain.GetStateRequest:
		state.logger.Debug("centralcontrol@default: GetStateRequest", zap.Stringer("item", msg.ItemId))
		runTask(state, ctx, actorutil.ForRequest(msg).ReplyTo(ctx), func() (*domain.GetStateResponse, error) {
			resp, err := state.gateway.GetState(context.Background(), msg.ItemId)
			return &domain.GetStateResponse{
				ActorResponseMixIn: domain.ErrorResponse(err),
				EntityId:           msg.EntityId,
				State:              resp.State,
				Failure:            resp.Failure,
			}, nil
		}, func(err error) domain.GetStateResponse {
			return domain.GetStateResponse{ActorResponseMixIn: domain.ErrorResponse(err), EntityId: msg.EntityId}
		})
	case domain.SendCommandRequest:
		state.logger.Debug("centralcontrol@default: SendCommandRequest", zap.Any("command", msg.Command))
		runTask(state, ctx, actorutil.ForRequest(msg).ReplyTo(ctx), func() (*domain.SendCommandResponse, error) {
			resp, err := state.gateway.SendCommand(context.Background(), msg.Command)
			return &domain.SendCommandResponse{
				ActorResponseMixIn: domain.ErrorResponse(err),
				EntityId:           msg.EntityId,
				Failure:            resp.Failure,
			}, nil
		}, func(err error) domain.SendCommandResponse {
			return domain.SendCommandResponse{ActorResponseMixIn: domain.ErrorResponse(err), EntityId: msg.EntityId}
		})
	case domain.DiscoverEntitiesRequest:
		state.logger.Debug("centralcontrol@default: DiscoverEntitiesRequest")
		runTask(state, ctx, actorutil.ForRequest(msg).ReplyTo(ctx), func() (*domain.DiscoverEntitiesResponse, error) {
			set, err := service.Discover(context.Background(), state.gateway, msg.Options)
			return &domain.DiscoverEntitiesResponse{
				ActorResponseMixIn: domain.ErrorResponse(err),
				Entities:           set,
			}, nil
		}, func(err error) domain.DiscoverEntitiesResponse {
			return domain.DiscoverEntitiesResponse{ActorResponseMixIn: domain.ErrorResponse(err)}
		})
	case backgroundTaskResult:
		state.inflight--
		state.logger.Debug("centralcontrol@default backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
	default:
		state.logger.Debug("centralcontrol@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func runTask[T any](state *CentralControlActor, ctx actor.Context, replyTo *actor.PID, fn func() (*T, error), onFailure func(error) T) {
	state.inflight++
	actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, fn),
		mapTaskResult[T](replyTo)).Recover(func(err error) backgroundTaskResult {
		state.logger.Warn("centralcontrol: background call failed", zap.Error(err))
		return backgroundTaskResult{
			message: onFailure(err),
			replyTo: replyTo,
		}
	}).WithTimeout(state.timeout + taskMargin).PipeTo(ctx.Self())
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
