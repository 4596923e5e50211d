package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type EventStatus string

const (
	EVENT_AVAILABLE_TICKET EventStatus = "available ticket"
	EVENT_SOLD_OUT         EventStatus = "sold out"
	EVENT_WAITING_LIST     EventStatus = "waiting list"
)

var EventStatuses = []EventStatus{
	EVENT_AVAILABLE_TICKET,
	EVENT_SOLD_OUT,
	EVENT_WAITING_LIST,
}

func (s EventStatus) Valid() bool {
	for _, v := range EventStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type TicketStatus string

const (
	TICKET_BOOKED    TicketStatus = "booked"
	TICKET_CANCELLED TicketStatus = "cancelled"
)

type ActivityType string

const (
	ACTIVITY_TICKETS_BOOKED    ActivityType = "tickets.booked"
	ACTIVITY_TICKETS_QUEUED    ActivityType = "tickets.waitlisted"
	ACTIVITY_TICKETS_CANCELLED ActivityType = "tickets.cancelled"
	ACTIVITY_WAITLIST_PROMOTED ActivityType = "waitlist.promoted"
)

// Activity is published after a capacity change has been committed.
type Activity struct {
	Type             ActivityType `json:"type"`
	EventID          string       `json:"event_id"`
	UserID           string       `json:"user_id"`
	Count            int          `json:"count"`
	AvailableTickets int          `json:"available_tickets"`
	WaitingListCount int          `json:"waiting_list_count"`
	Status           EventStatus  `json:"status"`
	OccurredAt       time.Time    `json:"occurred_at"`
}

func (a Activity) Payload() JSONB {
	return JSONB{
		"type":               string(a.Type),
		"event_id":           a.EventID,
		"user_id":            a.UserID,
		"count":              a.Count,
		"available_tickets":  a.AvailableTickets,
		"waiting_list_count": a.WaitingListCount,
		"status":             string(a.Status),
		"occurred_at":        a.OccurredAt.Format(time.RFC3339Nano),
	}
}

type CreateEventRequestBody struct {
	Name         string `json:"name" binding:"required"`
	TotalTickets int    `json:"totalTickets" binding:"required,gt=0"`
}

type TicketsRequestBody struct {
	NumberOfTickets int `json:"numberOfTickets" binding:"required,gt=0"`
}

type EventURIParams struct {
	EventID string `uri:"eventId" binding:"required,uuid"`
}

type TicketURIParams struct {
	TicketID string `uri:"ticketId" binding:"required,uuid"`
}

type VerifyTicketRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type EventStatusQuery struct {
	Status string `form:"status" binding:"omitempty,eventstatus"`
}

type RegisterUserRequestBody struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Country   string `json:"country" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginUserRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type APIResponseUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Country   string `json:"country,omitempty"`
	Email     string `json:"email,omitempty"`
}

type APIResponseWaitingListEntry struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Position int    `json:"position"`
}
