package allocator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lacegiovanni17/event-ticket-BE/src/models"
	"github.com/lacegiovanni17/event-ticket-BE/src/models/scopes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errStaleVersion = errors.New("event version changed during update")

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
)

func isConflict(err error) bool {
	if errors.Is(err, errStaleVersion) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// withEventTx runs fn against the locked event row and persists the counters it
// leaves behind. Contention is retried with linear backoff. The returned event
// holds the committed state.
func (a *Allocator) withEventTx(ctx context.Context, eventID string, fn func(tx *gorm.DB, event *models.Event) error) (*models.Event, error) {
	var lastErr error
	for attempt := 1; attempt <= a.opts.MaxAttempts; attempt++ {
		var saved *models.Event
		err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			event, err := lockEvent(tx, eventID)
			if err != nil {
				return err
			}
			version := event.Version
			if err := fn(tx, event); err != nil {
				return err
			}
			if err := saveEvent(tx, event, version); err != nil {
				return err
			}
			saved = event
			return nil
		})
		if err == nil {
			return saved, nil
		}
		if !isConflict(err) {
			return nil, storageError(err)
		}
		lastErr = err
		log.Printf("[allocator] Conflict on event %s (attempt %d/%d): %s\n", eventID, attempt, a.opts.MaxAttempts, err.Error())
		if attempt == a.opts.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, storageError(ctx.Err())
		case <-time.After(a.opts.Backoff * time.Duration(attempt)):
		}
	}
	return nil, fmt.Errorf("%w: event %s: %v", ErrConflict, eventID, lastErr)
}

func lockEvent(tx *gorm.DB, eventID string) (*models.Event, error) {
	var event models.Event
	if err := tx.
		Clauses(clause.Locking{
			Strength: "UPDATE",
			Table:    clause.Table{Name: clause.CurrentTable},
		}).
		Scopes(scopes.WithID(eventID)).
		First(&event).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return nil, err
	}
	return &event, nil
}

// saveEvent writes the counters and the derived status, guarded by the version read under lock.
func saveEvent(tx *gorm.DB, event *models.Event, version int) error {
	event.Status = DeriveStatus(event.AvailableTickets, event.WaitingListCount)
	result := tx.
		Model(&models.Event{}).
		Where("id = ? AND version = ?", event.ID, version).
		Updates(map[string]any{
			"available_tickets":  event.AvailableTickets,
			"waiting_list_count": event.WaitingListCount,
			"status":             event.Status,
			"version":            version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errStaleVersion
	}
	event.Version = version + 1
	return nil
}
