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
	"github.com/kapostolos1/estia-app/pkg/vault"
	"github.com/kapostolos1/estia-app/services/business"
	"github.com/kapostolos1/estia-app/services/subscription"
	"github.com/kapostolos1/estia-app/services/verify"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// playverify terminates Google Play purchase verification. It is deployed
// separately from the edge API so a slow store backend cannot starve the
// booking path.
func main() {
	app := fx.New(
		vault.Module,
		config.Module,
		logger.Module,
		db.Module,
		redis.Module,
		gen.Module,

		server.Module,
		health.Module,
		metrics.Module,

		business.Module,
		subscription.Module,
		verify.Module,

		fx.Invoke(migrate),
	)

	app.Run()
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&business.Business{},
		&business.Profile{},
		&subscription.Subscription{},
		&verify.PlayPurchase{},
	)
}
