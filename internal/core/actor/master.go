package actor

import (
	"errors"
	"fmt"
	"log"
	"time"

	adactor "shellyboard/internal/adapter/actor"
	"shellyboard/internal/config"
	"shellyboard/internal/core/domain"
	. "shellyboard/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type HomeAssistantActorProvider func() *adactor.HomeAssistantActor

type MQTTActorProvider func(*eventstream.EventStream) *adactor.MQTTActor

// MasterActor supervises the adapter and board children and routes
// board-bound requests. The MQTT child is only spawned when the bridge is
// enabled.
type MasterActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck healthCheckResult
	eventStream        *eventstream.EventStream
	haActor            *actor.PID
	boardActor         *actor.PID
	mqttActor          *actor.PID
	haActorProvider    HomeAssistantActorProvider
	mqttActorProvider  MQTTActorProvider
	logger             *zap.Logger
}

type healthCheckResult struct {
	haActorHealthy    bool
	boardActorHealthy bool
	mqttActorHealthy  bool
	mqttExpected      bool
	checksReceived    int
	respondTo         *actor.PID
}

func NewMasterActor(config config.Config, haActorProvider HomeAssistantActorProvider, mqttActorProvider MQTTActorProvider, logger *zap.Logger) *MasterActor {
	act := &MasterActor{
		config:            config,
		behavior:          actor.NewBehavior(),
		stash:             &Stash{},
		logger:            ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:       &eventstream.EventStream{},
		haActorProvider:   haActorProvider,
		mqttActorProvider: mqttActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterActor) EventStream() *eventstream.EventStream {
	return state.eventStream
}

func (state *MasterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset(state.config.MQTT.Enable)

		haActorPID, err := state.startHomeAssistantActor(ctx)
		if err != nil {
			panic(err)
		}
		state.haActor = haActorPID

		boardActorPID, err := state.startBoardActor(ctx)
		if err != nil {
			panic(err)
		}
		state.boardActor = boardActorPID

		if state.config.MQTT.Enable {
			mqttActorPID, err := state.startMQTTActor(ctx)
			if err != nil {
				panic(err)
			}
			state.mqttActor = mqttActorPID
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset(state.config.MQTT.Enable)
		state.currentHealthCheck.respondTo = ctx.Sender()
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.haActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_HA,
				Healthy: false,
			}
		})
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.boardActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_BOARD,
				Healthy: false,
			}
		})
		if state.mqttActor != nil {
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
				return domain.ActorHealthResponse{
					Id:      domain.ACTOR_ID_MQTT,
					Healthy: false,
				}
			})
		}

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case domain.LoadBoardRequest, domain.GetBoardRequest, domain.SortBoardRequest,
		domain.InstallUpdateRequest, domain.PressRebootRequest:
		state.logger.Debug("master@default forward to board", zap.String("type", fmt.Sprintf("%T", msg)))
		ctx.Forward(state.boardActor)
	case *actor.Terminated:
		// if the registry adapter fails on boot, terminate
		if msg.Who.Id == fmt.Sprintf("%s/%s", domain.ACTOR_ID_MASTER, domain.ACTOR_ID_HA) {
			state.logger.Error("master@default homeassistant error")
			panic(errors.New("homeassistant terminated"))
		}
	default:
		state.logger.Debug("master@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			if msg.Id == domain.ACTOR_ID_HA {
				state.currentHealthCheck.haActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_BOARD {
				state.currentHealthCheck.boardActorHealthy = true
			} else if msg.Id == domain.ACTOR_ID_MQTT {
				state.currentHealthCheck.mqttActorHealthy = true
			}
		}
		if state.currentHealthCheck.allReceived() {

			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterActor) startHomeAssistantActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	haProps := actor.PropsFromProducer(func() actor.Actor {
		return state.haActorProvider()
	}, actor.WithSupervisor(supervisor))
	haActorPID, err := ctx.SpawnNamed(haProps, domain.ACTOR_ID_HA)
	if err != nil {
		return nil, err
	}

	return haActorPID, nil
}

func (state *MasterActor) startBoardActor(ctx actor.Context) (*actor.PID, error) {

	decider := func(reason interface{}) actor.Directive {
		log.Printf("handling failure for child. reason: %v", reason)
		return actor.RestartDirective
	}
	supervisor := actor.NewOneForOneStrategy(1, 10*time.Second, decider)

	boardProps := actor.PropsFromProducer(func() actor.Actor {
		return NewBoardActor(&state.config, state.haActor, state.eventStream, state.logger)
	}, actor.WithSupervisor(supervisor))
	boardActorPID, err := ctx.SpawnNamed(boardProps, domain.ACTOR_ID_BOARD)
	if err != nil {
		return nil, err
	}

	return boardActorPID, nil
}

func (state *MasterActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {

	supervisor := actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)

	mqttProps := actor.PropsFromProducer(func() actor.Actor {
		return state.mqttActorProvider(state.eventStream)
	}, actor.WithSupervisor(supervisor))
	mqttActorPID, err := ctx.SpawnNamed(mqttProps, domain.ACTOR_ID_MQTT)
	if err != nil {
		return nil, err
	}

	return mqttActorPID, nil
}

func (state *healthCheckResult) reset(mqttExpected bool) {
	state.haActorHealthy = false
	state.boardActorHealthy = false
	state.mqttActorHealthy = false
	state.mqttExpected = mqttExpected
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	if state.mqttExpected {
		return state.checksReceived == 3
	}
	return state.checksReceived == 2
}

func (state *healthCheckResult) allHealthy() bool {
	if state.mqttExpected && !state.mqttActorHealthy {
		return false
	}
	return state.haActorHealthy && state.boardActorHealthy
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
