package actor

import (
	"context"
	"fmt"
	"time"

	"shellyboard/internal/core/domain"
	"shellyboard/internal/core/port"
	"shellyboard/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

const registryCallTimeout = 15 * time.Second

// HomeAssistantActor serializes access to the host WebSocket connection.
// Registry reads and service calls run as background tasks; a failed
// connection panics so the supervisor restarts the actor with backoff.
type HomeAssistantActor struct {
	behavior actor.Behavior
	stash    *actorutil.Stash
	service  port.RegistryService
	logger   *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func mapTaskResult[T any](replyTo *actor.PID) func(*T) *backgroundTaskResult {
	return func(a *T) *backgroundTaskResult {
		return &backgroundTaskResult{message: *a, replyTo: replyTo}
	}
}

func NewHomeAssistantActor(service port.RegistryService, logger *zap.Logger) *HomeAssistantActor {
	act := &HomeAssistantActor{
		service:  service,
		behavior: actor.NewBehavior(),
		stash:    &actorutil.Stash{},
		logger:   actorutil.ActorLogger(domain.ACTOR_ID_HA, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HomeAssistantActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HomeAssistantActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("homeassistant@starting started")
		connectCtx, cancel := context.WithTimeout(context.Background(), registryCallTimeout)
		defer cancel()
		if err := state.service.Connect(connectCtx); err != nil {
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		_ = state.service.Close()
	default:
		state.logger.Debug("homeassistant@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HomeAssistantActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("homeassistant@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_HA,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetRegistryDevicesRequest:
		state.logger.Debug("homeassistant@default: GetRegistryDevicesRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.GetRegistryDevicesResponse {
			devices, err := state.service.ListDevices(context.Background())
			return &domain.GetRegistryDevicesResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
				Devices:            devices,
			}
		}), mapTaskResult[domain.GetRegistryDevicesResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetRegistryDevicesResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
				},
				replyTo: sender,
			}
		}).WithTimeout(registryCallTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingHomeAssistant)
	case domain.GetRegistryEntitiesRequest:
		state.logger.Debug("homeassistant@default: GetRegistryEntitiesRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.GetRegistryEntitiesResponse {
			entities, err := state.service.ListEntities(context.Background())
			return &domain.GetRegistryEntitiesResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
				Entities:           entities,
			}
		}), mapTaskResult[domain.GetRegistryEntitiesResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetRegistryEntitiesResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
				},
				replyTo: sender,
			}
		}).WithTimeout(registryCallTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingHomeAssistant)
	case domain.GetStatesRequest:
		state.logger.Debug("homeassistant@default: GetStatesRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.GetStatesResponse {
			states, err := state.service.States(context.Background())
			return &domain.GetStatesResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
				States:             states,
			}
		}), mapTaskResult[domain.GetStatesResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetStatesResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
				},
				replyTo: sender,
			}
		}).WithTimeout(registryCallTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingHomeAssistant)
	case domain.CallUpdateInstallRequest:
		state.logger.Debug("homeassistant@default: CallUpdateInstallRequest", zap.String("entity", msg.EntityId))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		entityId := msg.EntityId
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.CallUpdateInstallResponse {
			err := state.service.InstallUpdate(context.Background(), entityId)
			return &domain.CallUpdateInstallResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
			}
		}), mapTaskResult[domain.CallUpdateInstallResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.CallUpdateInstallResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
				},
				replyTo: sender,
			}
		}).WithTimeout(registryCallTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingHomeAssistant)
	case domain.CallButtonPressRequest:
		state.logger.Debug("homeassistant@default: CallButtonPressRequest", zap.String("entity", msg.EntityId))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		entityId := msg.EntityId
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTaskNoError(ctx, func() *domain.CallButtonPressResponse {
			err := state.service.PressButton(context.Background(), entityId)
			return &domain.CallButtonPressResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
			}
		}), mapTaskResult[domain.CallButtonPressResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.CallButtonPressResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
				},
				replyTo: sender,
			}
		}).WithTimeout(registryCallTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingHomeAssistant)
	case *actor.Stopping:
		_ = state.service.Close()
	default:
		state.logger.Debug("homeassistant@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *HomeAssistantActor) WaitingHomeAssistant(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("homeassistant@waiting backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		ctx.Send(msg.replyTo, msg.message)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case *actor.Stopping:
		_ = state.service.Close()
	default:
		state.logger.Debug("homeassistant@waiting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}
