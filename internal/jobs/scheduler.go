package jobs

import (
	"parkxcel/internal/logging"

	"github.com/hibiken/asynq"
)

// Scheduler enqueues the recurring report tasks. The daily reminder fires
// every morning at 09:00 and the monthly report on the first of each month.
type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisAddr string) (*Scheduler, error) {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddr},
		&asynq.SchedulerOpts{},
	)

	if _, err := scheduler.Register("0 9 * * *", asynq.NewTask(TypeDailyReminder, nil)); err != nil {
		return nil, err
	}
	if _, err := scheduler.Register("0 9 1 * *", asynq.NewTask(TypeMonthlyReport, nil)); err != nil {
		return nil, err
	}

	return &Scheduler{scheduler: scheduler}, nil
}

func (s *Scheduler) Start() error {
	logging.Logger().Info().Msg("starting job scheduler")
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	logging.Logger().Info().Msg("shutting down job scheduler")
	s.scheduler.Shutdown()
}
