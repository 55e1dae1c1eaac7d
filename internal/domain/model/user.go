package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User carries the credit balance of an account.
type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name         string    `gorm:"size:255" json:"name"`
	CurrentPlan  Plan      `gorm:"size:20;not null;default:'FREE'" json:"current_plan"`
	CreditsTotal int       `gorm:"not null" json:"credits_total"`
	CreditsUsed  int       `gorm:"not null;default:0" json:"credits_used"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Remaining may be negative after a downgrade below current usage.
func (u *User) Remaining() int {
	return u.CreditsTotal - u.CreditsUsed
}

// NewUser returns a FREE account with the FREE allotment.
func NewUser(email, name string) *User {
	return &User{
		Email:        email,
		Name:         name,
		CurrentPlan:  PlanFree,
		CreditsTotal: PlanFree.Config().Credits,
	}
}
