package scheduler

import (
	"context"
	"fmt"

	"github.com/DominikStarke/becker-centralcontrol-has/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/zap"
)

const REDISCOVERY_JOB_KEY = "rediscovery"

// Scheduler runs the cron driven jobs of the bridge.
type Scheduler struct {
	sched  quartz.Scheduler
	jobs   []*quartz.JobKey
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		sched:  quartz.NewStdScheduler(),
		logger: logger.With(zap.String("component", "scheduler")),
	}
}

// RediscoveryJob asks the master actor to enumerate the gateway again.
func RediscoveryJob(sender actor.SenderContext, master *actor.PID) *job.FunctionJob[bool] {
	return job.NewFunctionJob(func(_ context.Context) (bool, error) {
		if master == nil {
			return false, fmt.Errorf("rediscovery: no master actor")
		}
		sender.Send(master, domain.RediscoverRequest{})
		return true, nil
	})
}

// ScheduleRediscovery registers the rediscovery job on a cron expression with
// a leading seconds field. An empty expression disables it.
func (s *Scheduler) ScheduleRediscovery(expression string, sender actor.SenderContext, master *actor.PID) error {
	if expression == "" {
		s.logger.Info("rediscovery disabled")
		return nil
	}
	trigger, err := quartz.NewCronTrigger(expression)
	if err != nil {
		return fmt.Errorf("invalid discovery cron %q: %w", expression, err)
	}
	key := quartz.NewJobKey(REDISCOVERY_JOB_KEY)
	if err := s.sched.ScheduleJob(quartz.NewJobDetail(RediscoveryJob(sender, master), key), trigger); err != nil {
		return err
	}
	s.jobs = append(s.jobs, key)
	s.logger.Info("rediscovery scheduled", zap.String("cron", expression))
	return nil
}

func (s *Scheduler) Scheduled() int {
	return len(s.jobs)
}

func (s *Scheduler) Start(ctx context.Context) {
	s.sched.Start(ctx)
}

// Stop stops the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	if !s.sched.IsStarted() {
		return
	}
	s.sched.Stop()
	s.sched.Wait(ctx)
}
