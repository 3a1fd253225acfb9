package actor

import (
	"encoding/json"
	"fmt"
	"time"

	"shellyboard/internal/config"
	"shellyboard/internal/core/domain"
	"shellyboard/internal/events"
	"shellyboard/internal/mqtt"
	"shellyboard/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTActor republishes the resolved board for non-HTTP consumers: one
// retained JSON document per device plus a board summary topic.
type MQTTActor struct {
	config         *config.Config
	behavior       actor.Behavior
	stash          *actorutil.Stash
	client         *mqtt.MQTTClient
	eventStream    *eventstream.EventStream
	eventStreamSub *eventstream.Subscription
	logger         *zap.Logger
}

type OnEventStreamMessage struct {
	message any
}

type MQTTConnected struct {
}

type MQTTConnectionLost struct {
	Error error
}

type publishResult struct {
	Error error
}

type boardSummaryPayload struct {
	Devices   int    `json:"devices"`
	Loading   bool   `json:"loading"`
	LastError string `json:"last_error,omitempty"`
}

func NewMQTTActor(config *config.Config, eventStream *eventstream.EventStream, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:      config,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
		eventStream: eventStream,
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

		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), nil,
			func(_ pahomqtt.Client, err error) {
				ctx.Send(ctx.Self(), MQTTConnectionLost{Error: err})
			})

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

		state.eventStreamSub = state.eventStream.Subscribe(func(value any) {
			ctx.Send(ctx.Self(), OnEventStreamMessage{
				message: value,
			})
		})

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)

	case MQTTConnectionLost:
		state.logger.Error("mqtt@starting connection lost", zap.Error(msg.Error))
		panic(msg.Error)

	default:
		state.logger.Debug("mqtt@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "connected",
		})
	case OnEventStreamMessage:
		state.handleEvent(ctx, msg.message)
	case publishResult:
		if msg.Error != nil {
			state.logger.Error("mqtt@default publish error", zap.Error(msg.Error))
		}
	case MQTTConnectionLost:
		state.logger.Error("mqtt@default connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Stopping:
		state.logger.Debug("mqtt@default stopping")
		if state.eventStreamSub != nil {
			state.eventStream.Unsubscribe(state.eventStreamSub)
		}
		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_OFFLINE, 0, true, func(error) {}, 500*time.Millisecond)
		state.client.Disconnect(500 * time.Millisecond)
	default:
		state.logger.Debug("mqtt@default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MQTTActor) handleEvent(ctx actor.Context, event any) {
	switch ev := event.(type) {
	case events.BoardUpdatedEvent:
		state.logger.Debug("mqtt@default BoardUpdatedEvent", zap.Int("rows", len(ev.Rows)))
		for _, row := range ev.Rows {
			payload, err := json.Marshal(row)
			if err != nil {
				state.logger.Error("mqtt@default row marshal error", zap.Error(err))
				continue
			}
			state.client.Publish(state.client.DeviceStateTopic(row.DeviceId), string(payload), 0, true, func(err error) {
				ctx.Send(ctx.Self(), publishResult{Error: err})
			}, 2*time.Second)
		}
		state.publishSummary(ctx, boardSummaryPayload{Devices: len(ev.Rows)})
	case events.LoadStatusEvent:
		state.publishSummary(ctx, boardSummaryPayload{Loading: ev.Loading, LastError: ev.Error})
	}
}

func (state *MQTTActor) publishSummary(ctx actor.Context, payload boardSummaryPayload) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	state.client.Publish(state.client.BoardStateTopic(), string(raw), 0, true, func(err error) {
		ctx.Send(ctx.Self(), publishResult{Error: err})
	}, 2*time.Second)
}
