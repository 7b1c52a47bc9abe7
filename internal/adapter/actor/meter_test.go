package actor

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/berfenger/pzem2mqtt/internal/core/domain"
	"github.com/berfenger/pzem2mqtt/internal/meter"
	"github.com/berfenger/pzem2mqtt/internal/util/actorutil"
	"github.com/berfenger/pzem2mqtt/pkg/pzem"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// slowReader records how many calls overlap on the bus.
type slowReader struct {
	*meter.TestReader
	delay     time.Duration
	inFlight  atomic.Int32
	maxFlight atomic.Int32
	calls     atomic.Int32
}

func (r *slowReader) Read() (*pzem.Measurement, error) {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		peak := r.maxFlight.Load()
		if n <= peak || r.maxFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	r.calls.Add(1)
	time.Sleep(r.delay)
	return r.TestReader.Read()
}

func spawnMeterActor(t *testing.T, reader meter.Reader, timeout time.Duration) (*actor.ActorSystem, *actor.PID) {
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	props := actor.PropsFromProducer(func() actor.Actor { return NewMeterActor(reader, timeout, logger) })
	pid := as.Root.Spawn(props)
	time.Sleep(200 * time.Millisecond)
	return as, pid
}

func TestMeterActorGetMeasurement(t *testing.T) {

	assert := assert.New(t)

	as, pid := spawnMeterActor(t, meter.NewTestReader(0xF8), 2*time.Second)
	context := as.Root

	result, err := context.RequestFuture(pid, domain.GetMeasurementRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	resp, ok := result.(domain.GetMeasurementResponse)
	require.True(t, ok)

	assert.False(resp.HasResponseError())
	require.NotNil(t, resp.Measurement)
	assert.InDelta(225.0, resp.Measurement.Voltage, 1e-9)
	assert.InDelta(31.2, resp.Measurement.Frequency, 1e-9)

	context.Stop(pid)
	as.Shutdown()
}

func TestMeterActorFailureCarriesError(t *testing.T) {

	assert := assert.New(t)

	reader := meter.NewTestReader(0xF8)
	reader.SetFailing(true)
	as, pid := spawnMeterActor(t, reader, 2*time.Second)
	context := as.Root

	result, err := context.RequestFuture(pid, domain.GetMeasurementRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	resp := result.(domain.GetMeasurementResponse)

	assert.True(resp.HasResponseError())
	assert.True(errors.Is(resp.GetResponseError(), pzem.ErrTruncatedFrame))
	assert.Nil(resp.Measurement, "no stale measurement on failure")

	// actor keeps serving after a failure
	reader.SetFailing(false)
	result, err = context.RequestFuture(pid, domain.GetMeasurementRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.False(result.(domain.GetMeasurementResponse).HasResponseError())

	context.Stop(pid)
	as.Shutdown()
}

func TestMeterActorResetEnergy(t *testing.T) {

	assert := assert.New(t)

	reader := meter.NewTestReader(0xF8)
	as, pid := spawnMeterActor(t, reader, 2*time.Second)
	context := as.Root

	result, err := context.RequestFuture(pid, domain.ResetEnergyRequest{Source: "test"}, 5*time.Second).Result()
	require.NoError(t, err)
	resp, ok := result.(domain.ResetEnergyResponse)
	require.True(t, ok)
	assert.False(resp.HasResponseError())
	assert.Equal(1, reader.Resets())

	result, err = context.RequestFuture(pid, domain.GetMeasurementRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	assert.Equal(0.0, result.(domain.GetMeasurementResponse).Measurement.Energy)

	context.Stop(pid)
	as.Shutdown()
}

func TestMeterActorInfoAndHealth(t *testing.T) {

	assert := assert.New(t)

	as, pid := spawnMeterActor(t, meter.NewTestReader(0x07), 2*time.Second)
	context := as.Root

	result, err := context.RequestFuture(pid, domain.GetMeterInfoRequest{}, 2*time.Second).Result()
	require.NoError(t, err)
	info := result.(domain.GetMeterInfoResponse).Info
	assert.Equal(uint8(0x07), info.Address)
	assert.Equal("test", info.Transport)

	result, err = context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	require.NoError(t, err)
	health := result.(domain.ActorHealthResponse)
	assert.True(health.Healthy)
	assert.Equal(domain.ACTOR_ID_METER, health.Id)

	context.Stop(pid)
	as.Shutdown()
}

func TestMeterActorSerializesBus(t *testing.T) {

	assert := assert.New(t)

	reader := &slowReader{TestReader: meter.NewTestReader(0xF8), delay: 50 * time.Millisecond}
	as, pid := spawnMeterActor(t, reader, 2*time.Second)
	context := as.Root

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := context.RequestFuture(pid, domain.GetMeasurementRequest{}, 10*time.Second).Result()
			if err != nil || result.(domain.GetMeasurementResponse).HasResponseError() {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(int32(0), failures.Load())
	assert.Equal(int32(8), reader.calls.Load())
	assert.Equal(int32(1), reader.maxFlight.Load(), "one exchange on the bus at a time")

	context.Stop(pid)
	as.Shutdown()
}

func TestMeterActorTimeout(t *testing.T) {

	reader := &slowReader{TestReader: meter.NewTestReader(0xF8), delay: 1 * time.Second}
	as, pid := spawnMeterActor(t, reader, 100*time.Millisecond)
	context := as.Root

	result, err := context.RequestFuture(pid, domain.GetMeasurementRequest{}, 5*time.Second).Result()
	require.NoError(t, err)
	resp := result.(domain.GetMeasurementResponse)
	assert.True(t, resp.HasResponseError())
	assert.Nil(t, resp.Measurement)

	// wait for the late call to release the bus
	time.Sleep(1200 * time.Millisecond)
	context.Stop(pid)
	as.Shutdown()
}
