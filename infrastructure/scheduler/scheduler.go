package scheduler

import (
	"context"
	"fmt"

	"trend-api/infrastructure/logger"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// cronLogger routes cron's own logging through logrus.
type cronLogger struct{}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Logger().WithFields(fields(keysAndValues)).Debug("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Logger().WithFields(fields(keysAndValues)).WithField("error", err).Error("cron: " + msg)
}

// Scheduler runs periodic jobs until its Run context is cancelled. Overlapping runs of
// the same job are skipped and panics are recovered.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

func New() *Scheduler {
	l := cronLogger{}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		ctx: context.Background(),
	}
}

// Add registers job under a standard five-field cron spec or a descriptor like "@every 1h".
func (s *Scheduler) Add(name, spec string, job func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		logger.GetLogger().WithField("job", name).Debug("Running scheduled job")
		job(s.ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	return nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for running jobs.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
