package jobs

import (
	"context"

	"parkxcel/internal/jobs/tasks"
	"parkxcel/internal/logging"

	"github.com/hibiken/asynq"
)

type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewServer(redisAddr string, concurrency int, handlers *tasks.Handlers) *Server {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: redisAddr},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				DefaultQueue: 10,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logging.Error(ctx).
					Err(err).
					Str("task_type", task.Type()).
					Msg("task failed")
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBookingConfirmation, handlers.HandleBookingConfirmation)
	mux.HandleFunc(TypeReceipt, handlers.HandleReceipt)
	mux.HandleFunc(TypeDailyReminder, handlers.HandleDailyReminder)
	mux.HandleFunc(TypeMonthlyReport, handlers.HandleMonthlyReport)

	return &Server{
		server: server,
		mux:    mux,
	}
}

func (s *Server) Start() error {
	logging.Logger().Info().Msg("starting asynq worker")
	return s.server.Start(s.mux)
}

func (s *Server) Shutdown() {
	logging.Logger().Info().Msg("shutting down asynq worker")
	s.server.Shutdown()
}
