package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"gorm.io/gorm"
)

type Event struct {
	ID               string            `gorm:"primaryKey;type:uuid" json:"id"`
	Name             string            `gorm:"uniqueIndex;not null" json:"name"`
	Slug             string            `gorm:"index;not null" json:"slug"`
	TotalTickets     int               `gorm:"not null" json:"totalTickets"`
	AvailableTickets int               `gorm:"not null" json:"availableTickets"`
	WaitingListCount int               `gorm:"not null" json:"waitingListCount"`
	Status           types.EventStatus `gorm:"type:text;not null" json:"status"`
	Version          int               `gorm:"not null" json:"-"`

	types.Timestamps
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Name = strings.TrimSpace(e.Name)
	if e.Slug == "" {
		e.Slug = strings.TrimPrefix(fmt.Sprintf("%s-%s", slug.Make(e.Name), e.ID[:8]), "-")
	}
	if e.Version == 0 {
		e.Version = 1
	}
	return nil
}
