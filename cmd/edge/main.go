package main

import (
	"github.com/kapostolos1/estia-app/pkg/config"
	"github.com/kapostolos1/estia-app/pkg/db"
	"github.com/kapostolos1/estia-app/pkg/gen"
	"github.com/kapostolos1/estia-app/pkg/health"
	"github.com/kapostolos1/estia-app/pkg/logger"
	"github.com/kapostolos1/estia-app/pkg/metrics"
	"github.com/kapostolos1/estia-app/pkg/redis"
	"github.com/kapostolos1/estia-app/pkg/server"
	"github.com/kapostolos1/estia-app/pkg/task"
	"github.com/kapostolos1/estia-app/pkg/vault"
	"github.com/kapostolos1/estia-app/services/access"
	"github.com/kapostolos1/estia-app/services/appointment"
	"github.com/kapostolos1/estia-app/services/business"
	"github.com/kapostolos1/estia-app/services/entitlement"
	"github.com/kapostolos1/estia-app/services/reminders"
	"github.com/kapostolos1/estia-app/services/subscription"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// edge is the client-facing API: access decisions, appointments, and the
// external cron trigger.
func main() {
	app := fx.New(
		vault.Module,
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		gen.Module,
		task.Client,

		server.Module,
		health.Module,
		metrics.Module,

		business.Module,
		subscription.Module,
		entitlement.Module,
		access.Module,
		appointment.Module,
		reminders.HTTPModule,

		fx.Invoke(migrate),
	)

	app.Run()
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&business.Business{},
		&business.Profile{},
		&subscription.Subscription{},
		&entitlement.Entitlement{},
		&appointment.Appointment{},
	)
}
