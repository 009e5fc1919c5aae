package entitlement

import (
	"context"

	"github.com/kapostolos1/estia-app/pkg/repository"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("entitlement.module",
	fx.Provide(
		func(db *gorm.DB) *Repository { return NewRepository(RepositoryParams{DB: db}) },
	),
)

type Repository struct {
	repo repository.Repository[Entitlement]
}

type RepositoryParams struct {
	DB *gorm.DB
}

func NewRepository(p RepositoryParams) *Repository {
	return &Repository{
		repo: repository.ProvideStore[Entitlement](p.DB),
	}
}

// ActiveForBusiness returns the newest non-revoked entitlement for a
// business, or nil when none exists.
func (r *Repository) ActiveForBusiness(ctx context.Context, businessID string) (*Entitlement, error) {
	rows, err := r.repo.Find(ctx, &Entitlement{BusinessID: businessID},
		repository.Where("revoked_at IS NULL"),
		repository.OrderBy("created_at DESC"),
		repository.Limit(1),
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
