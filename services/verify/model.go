package verify

import "time"

// PlayPurchase is the audit trail of verification attempts. Rows are
// append-only; the subscription table holds the derived state.
type PlayPurchase struct {
	ID            string     `gorm:"column:id;primaryKey"`
	BusinessID    string     `gorm:"column:business_id"`
	UserID        string     `gorm:"column:user_id"`
	ProductID     string     `gorm:"column:product_id"`
	PurchaseToken string     `gorm:"column:purchase_token"`
	State         string     `gorm:"column:subscription_state"`
	ExpiryTime    *time.Time `gorm:"column:expiry_time"`
	Acknowledged  bool       `gorm:"column:acknowledged"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
}

func (PlayPurchase) TableName() string { return "play_purchases" }

type VerifyRequest struct {
	PurchaseToken string `json:"purchase_token" binding:"required"`
	ProductID     string `json:"product_id"`
}

type VerifyResult struct {
	Active    bool       `json:"active"`
	Updated   bool       `json:"updated"`
	PaidUntil *time.Time `json:"paid_until,omitempty"`
	State     string     `json:"state,omitempty"`
}
