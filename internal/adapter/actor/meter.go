package actor

import (
	"fmt"
	"sync"
	"time"

	"github.com/berfenger/pzem2mqtt/internal/core/domain"
	"github.com/berfenger/pzem2mqtt/internal/meter"
	"github.com/berfenger/pzem2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// MeterActor owns the meter bus. Bus calls run one at a time; requests that
// arrive meanwhile are stashed.
type MeterActor struct {
	behavior       actor.Behavior
	stash          *actorutil.Stash
	reader         meter.Reader
	requestTimeout time.Duration
	// held for the whole bus call, also by calls that outlived their timeout
	bus    *sync.Mutex
	logger *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

const defaultRequestTimeout = 5 * time.Second

func NewMeterActor(reader meter.Reader, requestTimeout time.Duration, logger *zap.Logger) *MeterActor {
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	act := &MeterActor{
		reader:         reader,
		requestTimeout: requestTimeout,
		behavior:       actor.NewBehavior(),
		stash:          &actorutil.Stash{},
		bus:            &sync.Mutex{},
		logger:         actorutil.ActorLogger(domain.ACTOR_ID_METER, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MeterActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MeterActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("meter@starting started", zap.Any("meter", state.reader.Info()))
		err := state.reader.Open()
		if err != nil {
			state.logger.Error("meter@starting could not open meter", zap.Error(err))
			panic(err)
		}
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
		state.close()
	default:
		state.logger.Debug("meter@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MeterActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("meter@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_METER,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetMeterInfoRequest:
		state.logger.Debug("meter@default: GetMeterInfoRequest")
		actorutil.ForRequest(msg).Respond(ctx, domain.GetMeterInfoResponse{
			Info: state.reader.Info(),
		})
	case domain.GetMeasurementRequest:
		state.logger.Debug("meter@default: GetMeasurementRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.readMeasurement),
			mapTaskResult[domain.GetMeasurementResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.GetMeasurementResponse{
					ActorResponseMixIn: domain.ErrorResponse(err),
				},
				replyTo: sender,
			}
		}).WithTimeout(state.requestTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingBus)
	case domain.ResetEnergyRequest:
		state.logger.Info("meter@default: ResetEnergyRequest", zap.String("source", msg.Source))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		actorutil.MapBackgroundTask(actorutil.NewBackgroundTask(ctx, state.resetEnergy),
			mapTaskResult[domain.ResetEnergyResponse](sender)).Recover(func(err error) backgroundTaskResult {
			return backgroundTaskResult{
				message: domain.ResetEnergyResponse{
					ActorResponseMixIn: domain.ErrorResponse(err),
				},
				replyTo: sender,
			}
		}).WithTimeout(state.requestTimeout).PipeTo(ctx.Self())
		state.behavior.BecomeStacked(state.WaitingBus)
	case *actor.Stopping:
		state.close()
	default:
		state.logger.Debug("meter@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MeterActor) WaitingBus(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("meter@WaitingBus backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_METER,
			Healthy: true,
			State:   "busy",
		})
	case *actor.Stopping:
		state.close()
	default:
		state.logger.Debug("meter@WaitingBus stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MeterActor) readMeasurement() (*domain.GetMeasurementResponse, error) {
	state.bus.Lock()
	defer state.bus.Unlock()

	m, err := state.reader.Read()
	if err != nil {
		state.logger.Warn("meter: read failed", zap.Error(err))
		return nil, err
	}
	return &domain.GetMeasurementResponse{
		Measurement: m,
	}, nil
}

func (state *MeterActor) resetEnergy() (*domain.ResetEnergyResponse, error) {
	state.bus.Lock()
	defer state.bus.Unlock()

	if err := state.reader.ResetEnergy(); err != nil {
		state.logger.Error("meter: energy reset failed", zap.Error(err))
		return nil, err
	}
	return &domain.ResetEnergyResponse{}, nil
}

func (state *MeterActor) close() {
	state.bus.Lock()
	defer state.bus.Unlock()
	if err := state.reader.Close(); err != nil {
		state.logger.Warn("meter: close failed", zap.Error(err))
	}
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
