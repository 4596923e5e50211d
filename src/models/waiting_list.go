package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WaitingListEntry queues one seat for a user. Entries are hard deleted on promotion.
type WaitingListEntry struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string `gorm:"type:uuid;not null;index" json:"userId"`
	EventID  string `gorm:"type:uuid;not null;uniqueIndex:idx_waiting_list_event_position" json:"eventId"`
	Position int    `gorm:"not null;uniqueIndex:idx_waiting_list_event_position" json:"position"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}

func (WaitingListEntry) TableName() string {
	return "waiting_list"
}

func (w *WaitingListEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
