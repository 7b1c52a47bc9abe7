// Package schedule runs cron driven maintenance tasks against the meter.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/berfenger/pzem2mqtt/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/zap"
)

const resetEnergyJobName = "reset_energy"

// ResetEnergyJob asks the master actor to clear the meter energy counter.
type ResetEnergyJob struct {
	rootContext *actor.RootContext
	master      *actor.PID
	timeout     time.Duration
	logger      *zap.Logger
}

var _ quartz.Job = (*ResetEnergyJob)(nil)

func NewResetEnergyJob(rootContext *actor.RootContext, master *actor.PID, timeout time.Duration, logger *zap.Logger) *ResetEnergyJob {
	return &ResetEnergyJob{
		rootContext: rootContext,
		master:      master,
		timeout:     timeout,
		logger:      logger,
	}
}

func (j *ResetEnergyJob) Execute(_ context.Context) error {
	res, err := j.rootContext.RequestFuture(j.master, domain.ResetEnergyRequest{Source: "schedule"}, j.timeout).Result()
	if err != nil {
		j.logger.Error("schedule: energy reset not answered", zap.Error(err))
		return err
	}
	resp, ok := res.(domain.ResetEnergyResponse)
	if !ok {
		return fmt.Errorf("unexpected reply %T", res)
	}
	if resp.HasResponseError() {
		j.logger.Error("schedule: energy reset failed", zap.Error(resp.GetResponseError()))
		return resp.GetResponseError()
	}
	j.logger.Info("schedule: energy counter reset")
	return nil
}

func (j *ResetEnergyJob) Description() string {
	return "reset meter energy counter"
}

// Scheduler wraps a quartz scheduler holding the maintenance jobs.
type Scheduler struct {
	scheduler quartz.Scheduler
	logger    *zap.Logger
}

// New validates cronExpr and schedules job on it. Expressions use the quartz
// format, seconds first (e.g. "0 0 0 1 * *" for monthly).
func New(cronExpr string, job quartz.Job, logger *zap.Logger) (*Scheduler, error) {
	trigger, err := quartz.NewCronTrigger(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	sched := quartz.NewStdScheduler()
	if err := sched.ScheduleJob(quartz.NewJobDetail(job, quartz.NewJobKey(resetEnergyJobName)), trigger); err != nil {
		return nil, err
	}
	return &Scheduler{
		scheduler: sched,
		logger:    logger,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("schedule: starting")
	s.scheduler.Start(ctx)
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.scheduler.Wait(ctx)
}
