package actor

import (
	"fmt"
	"time"

	"shellyboard/internal/config"
	"shellyboard/internal/core/domain"
	"shellyboard/internal/core/service"
	"shellyboard/internal/events"
	"shellyboard/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const (
	// how long a successful update/reboot command gets to settle host-side
	// before the board is reloaded
	commandSettleDelay = 2500 * time.Millisecond

	registryRequestTimeout = 20 * time.Second
)

// BoardActor owns the resolved row set. One load may be in flight at a
// time; a load request observed while loading is dropped, not queued. Rows
// survive a failed load so the board stays usable.
type BoardActor struct {
	config    *config.Config
	behavior  actor.Behavior
	stash     *actorutil.Stash
	scheduler *scheduler.TimerScheduler

	haActor     *actor.PID
	eventStream *eventstream.EventStream
	sorter      *service.RowSorter
	sortState   service.SortState

	rows      []domain.Row
	lastError string
	pending   pendingLoad

	logger *zap.Logger
}

// pendingLoad collects the concurrently requested registry snapshots of
// one load cycle.
type pendingLoad struct {
	devices  []domain.DeviceRecord
	entities []domain.EntityRecord
	states   map[string]domain.StateSnapshot
	received int
	err      error
}

func (p *pendingLoad) complete() bool {
	return p.received == 3
}

func NewBoardActor(config *config.Config, haActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *BoardActor {
	act := &BoardActor{
		config:      config,
		haActor:     haActor,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		eventStream: eventStream,
		sorter:      service.NewRowSorter(config.SortLocale),
		sortState:   service.SortState{Key: service.DefaultSortKey},
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_BOARD, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *BoardActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *BoardActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("board@starting started")
		state.scheduler = scheduler.NewTimerScheduler(ctx)
		state.behavior.Become(state.DefaultReceive)
		ctx.Send(ctx.Self(), domain.LoadBoardRequest{})
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("board@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *BoardActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("board@default ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_BOARD,
			Healthy: true,
			State:   "idle",
		})
	case domain.LoadBoardRequest:
		state.logger.Debug("board@default LoadBoardRequest")
		state.beginLoad(ctx)
	case domain.GetBoardRequest:
		actorutil.ForRequest(msg).Respond(ctx, state.boardResponse(false))
	case domain.SortBoardRequest:
		state.logger.Debug("board@default SortBoardRequest", zap.String("key", msg.Key))
		state.sortState.Toggle(msg.Key)
		state.sorter.Sort(state.rows, state.sortState)
		state.publishBoard()
		actorutil.ForRequest(msg).Respond(ctx, state.boardResponse(false))
	case domain.InstallUpdateRequest:
		state.logger.Debug("board@default InstallUpdateRequest", zap.String("entity", msg.EntityId))
		state.dispatchUpdateInstall(ctx, msg)
	case domain.PressRebootRequest:
		state.logger.Debug("board@default PressRebootRequest", zap.String("entity", msg.EntityId))
		state.dispatchRebootPress(ctx, msg)
	default:
		state.logger.Debug("board@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *BoardActor) LoadingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.LoadBoardRequest:
		// no queuing: one load at a time
		state.logger.Debug("board@loading LoadBoardRequest ignored")
	case domain.GetBoardRequest:
		actorutil.ForRequest(msg).Respond(ctx, state.boardResponse(true))
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_BOARD,
			Healthy: true,
			State:   "loading",
		})
	case domain.GetRegistryDevicesResponse:
		state.logger.Debug("board@loading GetRegistryDevicesResponse")
		if msg.HasResponseError() {
			state.pending.err = msg.GetResponseError()
		} else {
			state.pending.devices = msg.Devices
		}
		state.pending.received++
		state.finishLoadIfComplete(ctx)
	case domain.GetRegistryEntitiesResponse:
		state.logger.Debug("board@loading GetRegistryEntitiesResponse")
		if msg.HasResponseError() {
			state.pending.err = msg.GetResponseError()
		} else {
			state.pending.entities = msg.Entities
		}
		state.pending.received++
		state.finishLoadIfComplete(ctx)
	case domain.GetStatesResponse:
		state.logger.Debug("board@loading GetStatesResponse")
		if msg.HasResponseError() {
			state.pending.err = msg.GetResponseError()
		} else {
			state.pending.states = msg.States
		}
		state.pending.received++
		state.finishLoadIfComplete(ctx)
	default:
		state.logger.Debug("board@loading stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// beginLoad issues the registry queries concurrently and parks the actor
// in the loading state until all snapshots are in.
func (state *BoardActor) beginLoad(ctx actor.Context) {
	state.pending = pendingLoad{}
	state.eventStream.Publish(events.LoadStatusEvent{Loading: true})

	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.haActor, domain.GetRegistryDevicesRequest{}, registryRequestTimeout), func(err error) any {
		return domain.GetRegistryDevicesResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
		}
	})
	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.haActor, domain.GetRegistryEntitiesRequest{}, registryRequestTimeout), func(err error) any {
		return domain.GetRegistryEntitiesResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
		}
	})
	actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.haActor, domain.GetStatesRequest{}, registryRequestTimeout), func(err error) any {
		return domain.GetStatesResponse{
			ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: err},
		}
	})

	state.behavior.BecomeStacked(state.LoadingReceive)
}

func (state *BoardActor) finishLoadIfComplete(ctx actor.Context) {
	if !state.pending.complete() {
		return
	}

	if state.pending.err != nil {
		// previous rows are retained so the board stays usable
		state.lastError = state.pending.err.Error()
		state.logger.Error("board@loading failed", zap.String("error", state.lastError))
		state.eventStream.Publish(events.LoadStatusEvent{Loading: false, Error: state.lastError})
	} else {
		states := state.pending.states
		stateOf := func(entityId string) *domain.StateSnapshot {
			if s, ok := states[entityId]; ok {
				return &s
			}
			return nil
		}
		rows := service.BuildRows(state.pending.devices, state.pending.entities, stateOf)
		state.sorter.Sort(rows, state.sortState)
		state.rows = rows
		state.lastError = ""
		state.logger.Debug("board@loading done", zap.Int("rows", len(rows)))
		state.publishBoard()
		state.eventStream.Publish(events.LoadStatusEvent{Loading: false})
	}

	state.pending = pendingLoad{}
	state.behavior.UnbecomeStacked()
	state.stash.UnstashAll(ctx)
}

func (state *BoardActor) dispatchUpdateInstall(ctx actor.Context, msg domain.InstallUpdateRequest) {
	sender := actorutil.ForRequest(msg).ReplyTo(ctx)
	entityId := msg.EntityId
	future := ctx.RequestFuture(state.haActor, domain.CallUpdateInstallRequest{EntityId: entityId}, registryRequestTimeout)
	ctx.ReenterAfter(future, func(res any, err error) {
		if err == nil {
			if r, ok := res.(domain.CallUpdateInstallResponse); ok {
				err = r.GetResponseError()
			}
		}
		state.completeCommand(ctx, sender, events.COMMAND_UPDATE_INSTALL, entityId, err, func(e error) domain.ActorResponse {
			return domain.InstallUpdateResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: e}}
		})
	})
}

func (state *BoardActor) dispatchRebootPress(ctx actor.Context, msg domain.PressRebootRequest) {
	sender := actorutil.ForRequest(msg).ReplyTo(ctx)
	entityId := msg.EntityId
	future := ctx.RequestFuture(state.haActor, domain.CallButtonPressRequest{EntityId: entityId}, registryRequestTimeout)
	ctx.ReenterAfter(future, func(res any, err error) {
		if err == nil {
			if r, ok := res.(domain.CallButtonPressResponse); ok {
				err = r.GetResponseError()
			}
		}
		state.completeCommand(ctx, sender, events.COMMAND_REBOOT_PRESS, entityId, err, func(e error) domain.ActorResponse {
			return domain.PressRebootResponse{ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: e}}
		})
	})
}

// completeCommand reports the command outcome and, on success, schedules
// one reload after the settle delay. A failed command never touches the
// displayed rows.
func (state *BoardActor) completeCommand(ctx actor.Context, sender *actor.PID, command, entityId string, err error, respond func(error) domain.ActorResponse) {
	state.eventStream.Publish(events.CommandResultEvent{Command: command, EntityId: entityId, Error: err})
	if err != nil {
		state.logger.Error("board command failed", zap.String("command", command), zap.String("entity", entityId), zap.Error(err))
	} else {
		state.scheduler.SendOnce(commandSettleDelay, ctx.Self(), domain.LoadBoardRequest{})
	}
	if sender != nil {
		ctx.Send(sender, respond(err))
	}
}

func (state *BoardActor) boardResponse(loading bool) domain.GetBoardResponse {
	rows := make([]domain.Row, len(state.rows))
	copy(rows, state.rows)
	return domain.GetBoardResponse{
		Rows:           rows,
		Loading:        loading,
		LoadError:      state.lastError,
		SortKey:        state.sortState.Key,
		SortDescending: state.sortState.Descending,
	}
}

func (state *BoardActor) publishBoard() {
	rows := make([]domain.Row, len(state.rows))
	copy(rows, state.rows)
	state.eventStream.Publish(events.BoardUpdatedEvent{
		Rows:           rows,
		SortKey:        state.sortState.Key,
		SortDescending: state.sortState.Descending,
	})
}
