package subscription

import "time"

// Subscription is the per-business trial/paid record. At most one row per
// business; it is the fallback access signal when no entitlement override
// exists.
type Subscription struct {
	BusinessID  string     `gorm:"column:business_id;primaryKey"`
	OwnerID     string     `gorm:"column:owner_id"`
	TrialEndsAt *time.Time `gorm:"column:trial_ends_at"`
	PaidUntil   *time.Time `gorm:"column:paid_until"`
	Provider    string     `gorm:"column:provider"`

	// 24h renewal reminder idempotency. SentForEndsAt records the expiry
	// timestamp a reminder was already sent for.
	ReminderSentAt        *time.Time `gorm:"column:renewal_reminder_24h_sent_at"`
	ReminderSentForEndsAt *time.Time `gorm:"column:renewal_reminder_24h_sent_for_ends_at"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// EndsAt returns the later of the trial and paid expiries, or nil when
// neither is set. Zero-valued timestamps count as absent.
func (s *Subscription) EndsAt() *time.Time {
	trial := ValidTime(s.TrialEndsAt)
	paid := ValidTime(s.PaidUntil)

	switch {
	case trial == nil:
		return paid
	case paid == nil:
		return trial
	case paid.After(*trial):
		return paid
	default:
		return trial
	}
}

// ValidTime treats nil, zero, and pre-epoch timestamps as absent. Malformed
// rows degrade to nil rather than erroring.
func ValidTime(t *time.Time) *time.Time {
	if t == nil || t.IsZero() || t.Unix() <= 0 {
		return nil
	}
	return t
}
