package reminders

import (
	"context"

	"github.com/kapostolos1/estia-app/pkg/config"
	"github.com/kapostolos1/estia-app/pkg/task"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("reminders.module",
	fx.Provide(
		NewSendGridMailer,
		func(m *SendGridMailer) Mailer { return m },
		NewService,
	),
)

// WorkerModule wires the asynq handler and the hourly scheduler. Only the
// reminders binary loads it.
var WorkerModule = fx.Module("reminders.worker",
	fx.Provide(NewRenewalTask, NewScheduler),
	fx.Invoke(func(t *RenewalTask, mux *asynq.ServeMux) {
		t.Register(mux)
	}),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error { s.Start(); return nil },
			OnStop:  func(ctx context.Context) error { s.Stop(); return nil },
		})
	}),
)

// HTTPModule wires the external cron trigger endpoint.
var HTTPModule = fx.Module("reminders.http",
	fx.Provide(func(enq task.Enqueuer, cfg *config.Config) *Handler {
		return NewHandler(enq, cfg.CronSecret)
	}),
	fx.Invoke(func(h *Handler, r *gin.Engine) {
		h.RegisterRoutes(r)
	}),
)
