package business

import (
	"context"

	"github.com/kapostolos1/estia-app/pkg/errutil"
	"github.com/kapostolos1/estia-app/pkg/repository"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var Module = fx.Module("business.module",
	fx.Provide(NewResolver),
)

// Resolver maps an authenticated user to its business and role. The role is
// backfilled from businesses.owner_id when the profile predates the role
// column.
type Resolver struct {
	profiles   repository.Repository[Profile]
	businesses repository.Repository[Business]
	group      singleflight.Group
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{
		profiles:   repository.ProvideStore[Profile](db),
		businesses: repository.ProvideStore[Business](db),
	}
}

// Resolve returns the user's membership. ErrNoBusiness-style conditions are
// reported as NotFound; callers in the access path translate them into the
// permissive unknown decision.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*Membership, error) {
	if userID == "" {
		return nil, errutil.Unauthorized("no authenticated user", nil)
	}

	v, err, _ := r.group.Do(userID, func() (interface{}, error) {
		return r.resolve(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Membership), nil
}

func (r *Resolver) resolve(ctx context.Context, userID string) (*Membership, error) {
	prof, err := r.profiles.FindOne(ctx, &Profile{ID: userID})
	if err != nil {
		return nil, errutil.Internal("failed to read profile", err)
	}

	if prof == nil || prof.BusinessID == "" {
		return nil, errutil.NotFound("user has no business", nil)
	}

	role := prof.Role
	if role == "" {
		biz, err := r.businesses.FindOne(ctx, &Business{ID: prof.BusinessID})
		if err != nil || biz == nil || biz.OwnerID == "" {
			role = RoleStaff
		} else {
			role = RoleStaff
			if biz.OwnerID == userID {
				role = RoleOwner
			}
			if err := r.profiles.Updates(ctx, &Profile{ID: userID}, map[string]any{"role": role}); err != nil {
				zap.L().Warn("failed to backfill profile role", zap.String("user_id", userID), zap.Error(err))
			}
		}
	}

	return &Membership{BusinessID: prof.BusinessID, Role: role}, nil
}
