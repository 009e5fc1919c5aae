package entitlement

import (
	"strings"
	"time"
)

type Kind string

const (
	KindLifetime     Kind = "lifetime"
	KindSub          Kind = "sub"
	KindSubscription Kind = "subscription"
	KindGiftUntil    Kind = "gift_until"
)

// Normalized lowercases the stored kind; comparisons are case-insensitive.
func (k Kind) Normalized() Kind {
	return Kind(strings.ToLower(strings.TrimSpace(string(k))))
}

// IsSubscription reports whether the kind denotes a verified paid grant.
func (k Kind) IsSubscription() bool {
	n := k.Normalized()
	return n == KindSub || n == KindSubscription
}

// Entitlement is an access grant that overrides the standard subscription
// record. Rows are created and revoked by an external administrative or
// payment-verification process; this service only reads them.
type Entitlement struct {
	ID         string     `gorm:"column:id;primaryKey"`
	BusinessID string     `gorm:"column:business_id"`
	Kind       Kind       `gorm:"column:kind"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	Note       string     `gorm:"column:note"`
	RevokedAt  *time.Time `gorm:"column:revoked_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (Entitlement) TableName() string { return "business_entitlements" }
