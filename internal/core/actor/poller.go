package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/pzem2mqtt/internal/config"
	"github.com/berfenger/pzem2mqtt/internal/core/domain"
	"github.com/berfenger/pzem2mqtt/internal/core/events"
	"github.com/berfenger/pzem2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// PollerActor reads the meter on a fixed interval and publishes the outcome
// on the event stream. A failed read only flips the meter state; previously
// published values are left alone.
type PollerActor struct {
	behavior  actor.Behavior
	stash     *actorutil.Stash
	scheduler *scheduler.TimerScheduler

	meterActor  *actor.PID
	config      *config.Config
	eventStream *eventstream.EventStream
	available   *bool
	failures    uint

	logger *zap.Logger
}

type pollTick struct {
}

func NewPollerActor(config *config.Config, meterActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *PollerActor {
	act := &PollerActor{
		config:      config,
		meterActor:  meterActor,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_POLLER, logger),
		eventStream: eventStream,
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *PollerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *PollerActor) pollInterval() time.Duration {
	return time.Duration(state.config.MonitorConfig.PollIntervalMillis) * time.Millisecond
}

func (state *PollerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("poller@default started", zap.Duration("interval", state.pollInterval()))
		if state.pollInterval() > 0 {
			state.scheduler = scheduler.NewTimerScheduler(ctx)
			// first reading right away
			ctx.Send(ctx.Self(), pollTick{})
		}
	case domain.ActorHealthRequest:
		state.logger.Debug("poller@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: true,
			State:   "idle",
		})
	case pollTick:
		state.logger.Debug("poller@default tick")
		timeout := state.config.Meter.RequestTimeout() + 1*time.Second
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.meterActor, domain.GetMeasurementRequest{}, timeout), func(err error) any {
			return domain.GetMeasurementResponse{
				ActorResponseMixIn: domain.ErrorResponse(err),
			}
		})
		state.behavior.BecomeStacked(state.WaitingMeasurementReceive)
	default:
		state.logger.Debug("poller@default: unhandled", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *PollerActor) WaitingMeasurementReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetMeasurementResponse:
		if msg.HasResponseError() || msg.Measurement == nil {
			state.failures++
			state.logger.Warn("poller@waiting meter did not answer", zap.Error(msg.GetResponseError()), zap.Uint("failures", state.failures))
			state.publishAvailability(false)
		} else {
			state.failures = 0
			m := msg.Measurement
			state.logger.Debug("poller@waiting measurement",
				zap.Float64("voltage", m.Voltage),
				zap.Float64("current", m.Current),
				zap.Float64("power", m.Power),
				zap.Float64("energy", m.Energy),
				zap.Float64("frequency", m.Frequency),
				zap.Float64("pf", m.PowerFactor),
				zap.Bool("alarm", m.AlarmActive()))
			for _, ev := range events.MeasurementToUpdateEvents(m) {
				state.eventStream.Publish(ev)
			}
			state.publishAvailability(true)
		}

		// schedule next tick
		state.scheduler.RequestOnce(state.pollInterval(), ctx.Self(), pollTick{})
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: true,
			State:   "polling",
		})
	default:
		state.logger.Debug("poller@waiting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// publishAvailability emits the meter state after every poll so a late MQTT
// subscriber still catches up.
func (state *PollerActor) publishAvailability(available bool) {
	if state.available != nil && *state.available != available {
		state.logger.Info("poller: meter availability changed", zap.Bool("available", available))
	}
	state.available = &available
	for _, ev := range events.MeterStateUpdateEvents(available) {
		state.eventStream.Publish(ev)
	}
}
