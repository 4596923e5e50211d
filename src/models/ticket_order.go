package models

import (
	"github.com/google/uuid"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"gorm.io/gorm"
)

// TicketOrder is a single seat. A request for n tickets produces n rows.
type TicketOrder struct {
	ID      string             `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string             `gorm:"type:uuid;not null;index:idx_ticket_orders_event_user" json:"userId"`
	EventID string             `gorm:"type:uuid;not null;index:idx_ticket_orders_event_user" json:"eventId"`
	Status  types.TicketStatus `gorm:"type:text;not null;index" json:"status"`

	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Event *Event `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"event,omitempty"`

	types.Timestamps
}

func (t *TicketOrder) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
