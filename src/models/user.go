package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"gorm.io/gorm"
)

type User struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	FirstName    string     `json:"firstName,omitempty"`
	LastName     string     `json:"lastName,omitempty"`
	Country      string     `json:"country,omitempty"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email,omitempty"`
	PasswordHash string     `gorm:"not null" json:"-"`
	LastActive   *time.Time `json:"last_active,omitempty"`

	types.Timestamps
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

func (u *User) ToAPIResponse() types.APIResponseUser {
	return types.APIResponseUser{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Country:   u.Country,
		Email:     u.Email,
	}
}
