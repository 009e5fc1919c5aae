package appointment

import "time"

// Appointment is a booked slot for a business's customer.
type Appointment struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	BusinessID string    `gorm:"column:business_id" json:"business_id"`
	CreatedBy  string    `gorm:"column:created_by" json:"created_by"`
	Customer   string    `gorm:"column:customer_name" json:"customer_name"`
	Phone      string    `gorm:"column:customer_phone" json:"customer_phone,omitempty"`
	Service    string    `gorm:"column:service" json:"service,omitempty"`
	Notes      string    `gorm:"column:notes" json:"notes,omitempty"`
	StartsAt   time.Time `gorm:"column:starts_at" json:"starts_at"`
	EndsAt     time.Time `gorm:"column:ends_at" json:"ends_at"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Appointment) TableName() string { return "appointments" }

type CreateRequest struct {
	Customer string    `json:"customer_name" binding:"required"`
	Phone    string    `json:"customer_phone"`
	Service  string    `json:"service"`
	Notes    string    `json:"notes"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at"`
}
