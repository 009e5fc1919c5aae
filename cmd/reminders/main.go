package main

import (
	"github.com/kapostolos1/estia-app/pkg/config"
	"github.com/kapostolos1/estia-app/pkg/db"
	"github.com/kapostolos1/estia-app/pkg/health"
	"github.com/kapostolos1/estia-app/pkg/logger"
	"github.com/kapostolos1/estia-app/pkg/metrics"
	"github.com/kapostolos1/estia-app/pkg/redis"
	"github.com/kapostolos1/estia-app/pkg/server"
	"github.com/kapostolos1/estia-app/pkg/task"
	"github.com/kapostolos1/estia-app/pkg/vault"
	"github.com/kapostolos1/estia-app/services/business"
	"github.com/kapostolos1/estia-app/services/reminders"
	"github.com/kapostolos1/estia-app/services/subscription"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// reminders is the background worker: it consumes reminder-run tasks and
// schedules the hourly scan.
func main() {
	app := fx.New(
		vault.Module,
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		task.Client,
		task.Server,

		server.Module,
		health.Module,
		metrics.Module,

		subscription.Module,
		reminders.Module,
		reminders.WorkerModule,

		fx.Invoke(migrate),
	)

	app.Run()
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&business.Profile{},
		&subscription.Subscription{},
	)
}
