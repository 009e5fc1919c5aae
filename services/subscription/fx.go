package subscription

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("subscription.module",
	fx.Provide(
		func(db *gorm.DB) *Repository { return NewRepository(RepositoryParams{DB: db}) },
		NewChangePublisher,
	),
)
