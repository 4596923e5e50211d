package allocator

import (
	"context"
	"fmt"
	"log"

	"github.com/lacegiovanni17/event-ticket-BE/src/models"
	"github.com/lacegiovanni17/event-ticket-BE/src/models/scopes"
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"gorm.io/gorm"
)

// Promotion describes a waiting-list entry converted into a booked ticket.
type Promotion struct {
	UserID   string `json:"userId"`
	TicketID string `json:"ticketId"`
	Position int    `json:"position"`
}

// enqueue appends n entries for userID behind the current tail of the event's queue.
// The caller must hold the event row lock.
func enqueue(tx *gorm.DB, event *models.Event, userID string, n int) ([]int, error) {
	var tail int
	if err := tx.
		Model(&models.WaitingListEntry{}).
		Scopes(scopes.ForEvent(event.ID)).
		Select("COALESCE(MAX(position), 0)").
		Scan(&tail).
		Error; err != nil {
		return nil, err
	}
	entries := make([]models.WaitingListEntry, n)
	positions := make([]int, n)
	for i := range entries {
		positions[i] = tail + i + 1
		entries[i] = models.WaitingListEntry{
			UserID:   userID,
			EventID:  event.ID,
			Position: positions[i],
		}
	}
	if err := tx.Create(&entries).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: waiting list position collision on event %s: %w", ErrStorage, event.ID, err)
		}
		return nil, err
	}
	event.WaitingListCount += n
	return positions, nil
}

// promoteFromWaitingList books one seat for the head of the queue. It is a no-op
// when the queue is empty. The caller must hold the event row lock and have freed
// at least one seat.
func promoteFromWaitingList(tx *gorm.DB, event *models.Event) (*Promotion, error) {
	var head []models.WaitingListEntry
	if err := tx.
		Scopes(scopes.ForEvent(event.ID), scopes.InQueueOrder).
		Limit(2).
		Find(&head).
		Error; err != nil {
		return nil, err
	}
	if len(head) == 0 {
		if event.WaitingListCount > 0 {
			log.Printf("[allocator] Event %s reports %d queued but the waiting list is empty\n", event.ID, event.WaitingListCount)
		}
		return nil, nil
	}
	if len(head) == 2 && head[0].Position == head[1].Position {
		return nil, fmt.Errorf("%w: duplicate waiting list position %d on event %s", ErrStorage, head[0].Position, event.ID)
	}
	entry := head[0]

	order := models.TicketOrder{
		UserID:  entry.UserID,
		EventID: event.ID,
		Status:  types.TICKET_BOOKED,
	}
	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}
	result := tx.Delete(&models.WaitingListEntry{}, "id = ?", entry.ID)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected != 1 {
		return nil, fmt.Errorf("%w: waiting list entry %s vanished during promotion", ErrStorage, entry.ID)
	}
	event.AvailableTickets--
	if event.WaitingListCount > 0 {
		event.WaitingListCount--
	}
	return &Promotion{
		UserID:   entry.UserID,
		TicketID: order.ID,
		Position: entry.Position,
	}, nil
}

// WaitingList returns the queue for an event in promotion order.
func (a *Allocator) WaitingList(ctx context.Context, eventID string) ([]models.WaitingListEntry, error) {
	if err := a.ensureEvent(ctx, eventID); err != nil {
		return nil, err
	}
	var entries []models.WaitingListEntry
	if err := a.db.
		WithContext(ctx).
		Scopes(scopes.ForEvent(eventID), scopes.InQueueOrder).
		Find(&entries).
		Error; err != nil {
		return nil, storageError(err)
	}
	return entries, nil
}

func (a *Allocator) ensureEvent(ctx context.Context, eventID string) error {
	var count int64
	if err := a.db.
		WithContext(ctx).
		Model(&models.Event{}).
		Scopes(scopes.WithID(eventID)).
		Count(&count).
		Error; err != nil {
		return storageError(err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return nil
}
