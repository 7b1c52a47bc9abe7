package schedule

import (
	"context"
	"testing"
	"time"

	adactor "github.com/berfenger/pzem2mqtt/internal/adapter/actor"
	"github.com/berfenger/pzem2mqtt/internal/meter"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResetEnergyJob(t *testing.T) {

	assert := assert.New(t)

	as := actor.NewActorSystem()
	reader := meter.NewTestReader(0xF8)
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewMeterActor(reader, time.Second, zap.NewNop())
	}))

	job := NewResetEnergyJob(as.Root, pid, 2*time.Second, zap.NewNop())
	assert.NotEmpty(job.Description())
	require.NoError(t, job.Execute(context.Background()))
	assert.Equal(1, reader.Resets())

	reader.SetFailing(true)
	assert.Error(job.Execute(context.Background()))
	assert.Equal(1, reader.Resets())

	as.Root.Stop(pid)
	as.Shutdown()
}

func TestSchedulerRunsJob(t *testing.T) {

	as := actor.NewActorSystem()
	reader := meter.NewTestReader(0xF8)
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewMeterActor(reader, time.Second, zap.NewNop())
	}))

	// every second
	sched, err := New("* * * * * *", NewResetEnergyJob(as.Root, pid, 2*time.Second, zap.NewNop()), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched.Start(ctx)

	assert.Eventually(t, func() bool { return reader.Resets() >= 1 }, 4*time.Second, 50*time.Millisecond)

	sched.Stop()
	as.Root.Stop(pid)
	as.Shutdown()
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	_, err := New("not a cron", &ResetEnergyJob{}, zap.NewNop())
	assert.Error(t, err)
}
