package jobs

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/propertyplus/propertyplus/internal/db/queryable"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Scheduler struct {
	scheduler gocron.Scheduler
	runner    *runner
	logger    *zap.Logger
}

func NewScheduler(logger *zap.Logger, db queryable.Queryable, traceProvider trace.TracerProvider) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLogger(&gocronLoggerAdapter{logger: logger.Sugar()}),
	)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		scheduler: scheduler,
		runner:    NewRunner(logger, db, traceProvider),
		logger:    logger,
	}, nil
}

// RegisterCronJob schedules job according to the given cron expression.
// Runs of the same job never overlap, a run that would start while the
// previous one is still going is rescheduled.
func (s *Scheduler) RegisterCronJob(cron string, job Job) error {
	_, err := s.scheduler.NewJob(
		gocron.CronJob(cron, false),
		gocron.NewTask(s.runner.RunJobFunc(job)),
		gocron.WithName(job.name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	s.logger.Info("registered cron job", zap.String("job", job.name), zap.String("cron", cron))
	return nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
}

func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}
