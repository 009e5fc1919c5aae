package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/kapostolos1/estia-app/pkg/repository"

	"gorm.io/gorm"
)

type Repository struct {
	db   *gorm.DB
	repo repository.Repository[Subscription]
}

type RepositoryParams struct {
	DB *gorm.DB
}

func NewRepository(p RepositoryParams) *Repository {
	return &Repository{
		db:   p.DB,
		repo: repository.ProvideStore[Subscription](p.DB),
	}
}

// ForBusiness returns the subscription row for a business, or nil when the
// business has none yet.
func (r *Repository) ForBusiness(ctx context.Context, businessID string) (*Subscription, error) {
	return r.repo.FindOne(ctx, &Subscription{BusinessID: businessID})
}

func (r *Repository) All(ctx context.Context) ([]*Subscription, error) {
	return r.repo.Find(ctx, &Subscription{})
}

// ApplyPaidUntil applies a verified expiry to the business's subscription
// row. The paid period is monotonic non-decreasing: the new expiry is
// written only when the purchase is active and later than the stored one.
// Otherwise only provider/updated_at are touched. Returns whether the paid
// period moved and the resulting paid_until.
func (r *Repository) ApplyPaidUntil(ctx context.Context, businessID, ownerID string, expiry time.Time, provider string, active bool) (bool, *time.Time, error) {
	var updated bool
	var paidUntil *time.Time

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.repo.WithTrx(tx).FindOne(ctx, &Subscription{BusinessID: businessID})
		if err != nil {
			return fmt.Errorf("failed to read subscription: %w", err)
		}

		now := time.Now()

		if existing == nil {
			row := &Subscription{
				BusinessID: businessID,
				OwnerID:    ownerID,
				Provider:   provider,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if active {
				row.PaidUntil = &expiry
				updated = true
				paidUntil = &expiry
			}
			if err := r.repo.WithTrx(tx).Create(ctx, row); err != nil {
				return fmt.Errorf("failed to create subscription: %w", err)
			}
			return nil
		}

		current := ValidTime(existing.PaidUntil)
		if active && (current == nil || expiry.After(*current)) {
			if err := tx.Model(&Subscription{}).
				Where("business_id = ?", businessID).
				Updates(map[string]any{
					"paid_until": expiry,
					"provider":   provider,
					"updated_at": now,
				}).Error; err != nil {
				return fmt.Errorf("failed to update paid_until: %w", err)
			}
			updated = true
			paidUntil = &expiry
			return nil
		}

		if err := tx.Model(&Subscription{}).
			Where("business_id = ?", businessID).
			Updates(map[string]any{
				"provider":   provider,
				"updated_at": now,
			}).Error; err != nil {
			return fmt.Errorf("failed to touch subscription: %w", err)
		}
		paidUntil = current
		return nil
	})

	return updated, paidUntil, err
}

// MarkReminderSent records the reminder idempotency pair for a business.
func (r *Repository) MarkReminderSent(ctx context.Context, businessID string, endsAt time.Time) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&Subscription{}).
		Where("business_id = ?", businessID).
		Updates(map[string]any{
			"renewal_reminder_24h_sent_at":          now,
			"renewal_reminder_24h_sent_for_ends_at": endsAt,
		}).Error
}
