package models

import (
	"github.com/google/uuid"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"gorm.io/gorm"
)

const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

type Notification struct {
	ID              string       `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string       `gorm:"type:uuid;index" json:"user_id"`
	ReferenceSource string       `json:"ref_src"`
	ReferenceType   string       `json:"ref_name"`
	ReferenceValue  string       `json:"ref_value"`
	Title           string       `json:"title"`
	Description     *string      `json:"description"`
	ActionType      string       `json:"action_type"`
	ActionData      *types.JSONB `gorm:"type:jsonb" json:"action_data"`
	Type            string       `json:"type"`
	Status          string       `gorm:"default:'pending'" json:"status"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	types.Timestamps
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
