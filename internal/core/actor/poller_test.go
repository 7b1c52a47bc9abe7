package actor

import (
	"sync"
	"testing"
	"time"

	adactor "github.com/berfenger/pzem2mqtt/internal/adapter/actor"
	"github.com/berfenger/pzem2mqtt/internal/core/domain"
	"github.com/berfenger/pzem2mqtt/internal/meter"
	"github.com/berfenger/pzem2mqtt/internal/util"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []any
}

func (r *eventRecorder) record(evt any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *eventRecorder) snapshot() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.events...)
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

func meterStates(events []any) []bool {
	var states []bool
	for _, ev := range events {
		if s, ok := ev.(domain.MeterStateUpdateEvent); ok {
			states = append(states, s.Value)
		}
	}
	return states
}

func countFloatEvents(events []any) int {
	n := 0
	for _, ev := range events {
		if _, ok := ev.(domain.FloatSensorUpdateEvent); ok {
			n++
		}
	}
	return n
}

func TestPollerPublishesMeasurements(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	cfg.MonitorConfig.PollIntervalMillis = 200
	logger := zap.NewNop()

	as := actor.NewActorSystem()
	context := as.Root

	reader := meter.NewTestReader(0xF8)
	meterPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewMeterActor(reader, cfg.Meter.RequestTimeout(), logger)
	}))

	es := eventstream.NewEventStream()
	rec := &eventRecorder{}
	es.Subscribe(rec.record)

	pollerPID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewPollerActor(&cfg, meterPID, es, logger)
	}))

	assert.Eventually(func() bool { return countFloatEvents(rec.snapshot()) >= 12 }, 3*time.Second, 20*time.Millisecond)
	states := meterStates(rec.snapshot())
	assert.NotEmpty(states)
	for _, s := range states {
		assert.True(s)
	}

	// failing meter: only the state flips, no stale values
	reader.SetFailing(true)
	time.Sleep(300 * time.Millisecond)
	rec.reset()
	time.Sleep(500 * time.Millisecond)
	evs := rec.snapshot()
	assert.Zero(countFloatEvents(evs))
	states = meterStates(evs)
	assert.NotEmpty(states)
	for _, s := range states {
		assert.False(s)
	}

	// meter answers again
	reader.SetFailing(false)
	assert.Eventually(func() bool {
		s := meterStates(rec.snapshot())
		return len(s) > 0 && s[len(s)-1]
	}, 3*time.Second, 20*time.Millisecond)

	res, err := context.RequestFuture(pollerPID, domain.ActorHealthRequest{}, 2*time.Second).Result()
	assert.NoError(err)
	assert.True(res.(domain.ActorHealthResponse).Healthy)

	context.Stop(pollerPID)
	context.Stop(meterPID)
	as.Shutdown()
}
