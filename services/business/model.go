package business

import "time"

type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

type Business struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	OwnerID   string    `gorm:"column:owner_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Business) TableName() string { return "businesses" }

type Profile struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Email      string    `gorm:"column:email"`
	FullName   string    `gorm:"column:full_name"`
	Role       Role      `gorm:"column:role"`
	BusinessID string    `gorm:"column:business_id"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// Membership is the resolved business context for an authenticated user.
type Membership struct {
	BusinessID string
	Role       Role
}
