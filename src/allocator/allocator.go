// Package allocator owns every mutation of event capacity: ticket orders, the
// waiting list and the counters cached on the event row.
package allocator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lacegiovanni17/event-ticket-BE/src/config"
	"github.com/lacegiovanni17/event-ticket-BE/src/models"
	"github.com/lacegiovanni17/event-ticket-BE/src/models/scopes"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"gorm.io/gorm"
)

type Options struct {
	// MaxAttempts bounds how often a contended Book or Cancel is retried.
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts: config.AllocatorMaxAttempts(),
		Backoff:     config.DEFAULT_RETRY_BACKOFF,
	}
}

type Allocator struct {
	db        *gorm.DB
	publisher Publisher
	opts      Options
}

func New(db *gorm.DB, publisher Publisher, opts Options) *Allocator {
	if publisher == nil {
		publisher = NopPublisher()
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = config.DEFAULT_MAX_ATTEMPTS
	}
	if opts.Backoff <= 0 {
		opts.Backoff = config.DEFAULT_RETRY_BACKOFF
	}
	return &Allocator{db: db, publisher: publisher, opts: opts}
}

type BookResult struct {
	EventID          string            `json:"eventId"`
	Queued           bool              `json:"queued"`
	AvailableTickets int               `json:"availableTickets"`
	WaitingListCount int               `json:"waitingListCount"`
	Status           types.EventStatus `json:"status"`
	TicketIDs        []string          `json:"ticketIds,omitempty"`
	Positions        []int             `json:"positions,omitempty"`
}

type CancelResult struct {
	EventID          string            `json:"eventId"`
	Cancelled        int               `json:"cancelled"`
	AvailableTickets int               `json:"availableTickets"`
	WaitingListCount int               `json:"waitingListCount"`
	Status           types.EventStatus `json:"status"`
	Promoted         *Promotion        `json:"promoted,omitempty"`
}

// DeriveStatus computes the cached status from the counters.
func DeriveStatus(availableTickets, waitingListCount int) types.EventStatus {
	switch {
	case availableTickets > 0:
		return types.EVENT_AVAILABLE_TICKET
	case waitingListCount > 0:
		return types.EVENT_WAITING_LIST
	default:
		return types.EVENT_SOLD_OUT
	}
}

func (a *Allocator) CreateEvent(ctx context.Context, name string, totalTickets int) (*models.Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: event name is required", ErrInvalidInput)
	}
	if totalTickets <= 0 {
		return nil, fmt.Errorf("%w: totalTickets must be greater than 0", ErrInvalidInput)
	}
	event := models.Event{
		Name:             name,
		TotalTickets:     totalTickets,
		AvailableTickets: totalTickets,
		WaitingListCount: 0,
		Status:           types.EVENT_AVAILABLE_TICKET,
	}
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.
			Model(&models.Event{}).
			Where("name = ?", name).
			Count(&existing).
			Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		if err := tx.Create(&event).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrDuplicateName, name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}
	log.Printf("[allocator] Created event %s (%s) with %d tickets\n", event.ID, event.Name, event.TotalTickets)
	return &event, nil
}

// BookTickets books count seats for userID or, when fewer seats are left, queues
// the whole request on the waiting list. Requests are never split.
func (a *Allocator) BookTickets(ctx context.Context, eventID, userID string, count int) (*BookResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: invalid number of tickets", ErrInvalidInput)
	}
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	var result BookResult
	event, err := a.withEventTx(ctx, eventID, func(tx *gorm.DB, event *models.Event) error {
		result = BookResult{EventID: event.ID}
		if event.AvailableTickets >= count {
			orders := make([]models.TicketOrder, count)
			for i := range orders {
				orders[i] = models.TicketOrder{
					UserID:  userID,
					EventID: event.ID,
					Status:  types.TICKET_BOOKED,
				}
			}
			if err := tx.Create(&orders).Error; err != nil {
				return err
			}
			for _, o := range orders {
				result.TicketIDs = append(result.TicketIDs, o.ID)
			}
			event.AvailableTickets -= count
			return nil
		}
		positions, err := enqueue(tx, event, userID, count)
		if err != nil {
			return err
		}
		result.Queued = true
		result.Positions = positions
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.AvailableTickets = event.AvailableTickets
	result.WaitingListCount = event.WaitingListCount
	result.Status = event.Status

	activity := types.ACTIVITY_TICKETS_BOOKED
	if result.Queued {
		activity = types.ACTIVITY_TICKETS_QUEUED
	}
	a.publish(ctx, a.activity(activity, event, userID, count))
	return &result, nil
}

// CancelTickets releases count of the caller's booked seats and promotes at most
// one waiting-list entry, however many seats were freed.
func (a *Allocator) CancelTickets(ctx context.Context, eventID, userID string, count int) (*CancelResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: invalid number of tickets", ErrInvalidInput)
	}
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	var result CancelResult
	event, err := a.withEventTx(ctx, eventID, func(tx *gorm.DB, event *models.Event) error {
		result = CancelResult{EventID: event.ID}
		var held []models.TicketOrder
		if err := tx.
			Model(&models.TicketOrder{}).
			Select("id").
			Scopes(scopes.ForEvent(event.ID), scopes.ForUser(userID), scopes.WithBookedStatus, scopes.OldestFirst).
			Limit(count).
			Find(&held).
			Error; err != nil {
			return err
		}
		if len(held) < count {
			return fmt.Errorf("%w: requested %d, holding %d", ErrInsufficientBookings, count, len(held))
		}
		ids := make([]string, len(held))
		for i, o := range held {
			ids[i] = o.ID
		}
		cancelled := tx.
			Model(&models.TicketOrder{}).
			Scopes(scopes.WithIDs(ids...), scopes.WithBookedStatus).
			Update("status", types.TICKET_CANCELLED)
		if cancelled.Error != nil {
			return cancelled.Error
		}
		if cancelled.RowsAffected != int64(count) {
			return errStaleVersion
		}
		event.AvailableTickets += count
		result.Cancelled = count

		if event.WaitingListCount > 0 {
			promoted, err := promoteFromWaitingList(tx, event)
			if err != nil {
				return err
			}
			result.Promoted = promoted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.AvailableTickets = event.AvailableTickets
	result.WaitingListCount = event.WaitingListCount
	result.Status = event.Status

	activities := []types.Activity{a.activity(types.ACTIVITY_TICKETS_CANCELLED, event, userID, count)}
	if result.Promoted != nil {
		activities = append(activities, a.activity(types.ACTIVITY_WAITLIST_PROMOTED, event, result.Promoted.UserID, 1))
	}
	a.publish(ctx, activities...)
	return &result, nil
}

// GetEventStatus returns the event. A non-empty expected status that differs from
// the current one yields a *StatusMismatchError.
func (a *Allocator) GetEventStatus(ctx context.Context, eventID string, expected types.EventStatus) (*models.Event, error) {
	if expected != "" && !expected.Valid() {
		return nil, fmt.Errorf("%w: invalid status provided", ErrInvalidInput)
	}
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	var event models.Event
	if err := a.db.WithContext(ctx).Scopes(scopes.WithID(eventID)).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return nil, storageError(err)
	}
	event.Status = DeriveStatus(event.AvailableTickets, event.WaitingListCount)
	if expected != "" && event.Status != expected {
		return &event, &StatusMismatchError{Expected: expected, Current: event.Status}
	}
	return &event, nil
}

// UserTickets lists the caller's booked tickets for an event.
func (a *Allocator) UserTickets(ctx context.Context, eventID, userID string) ([]models.TicketOrder, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if err := a.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	var orders []models.TicketOrder
	if err := a.db.
		WithContext(ctx).
		Scopes(scopes.ForEvent(eventID), scopes.ForUser(userID), scopes.WithBookedStatus, scopes.OldestFirst).
		Find(&orders).
		Error; err != nil {
		return nil, storageError(err)
	}
	return orders, nil
}

// Ticket returns a booked ticket owned by userID together with its event.
func (a *Allocator) Ticket(ctx context.Context, ticketID, userID string) (*models.TicketOrder, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	var order models.TicketOrder
	if err := a.db.
		WithContext(ctx).
		Preload("Event").
		Scopes(scopes.WithID(ticketID), scopes.ForUser(userID), scopes.WithBookedStatus).
		First(&order).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, ticketID)
		}
		return nil, storageError(err)
	}
	return &order, nil
}

func (a *Allocator) activity(kind types.ActivityType, event *models.Event, userID string, count int) types.Activity {
	return types.Activity{
		Type:             kind,
		EventID:          event.ID,
		UserID:           userID,
		Count:            count,
		AvailableTickets: event.AvailableTickets,
		WaitingListCount: event.WaitingListCount,
		Status:           event.Status,
		OccurredAt:       time.Now().UTC(),
	}
}
