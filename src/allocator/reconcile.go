package allocator

import (
	"context"
	"log"

	"github.com/lacegiovanni17/event-ticket-BE/src/models"
	"github.com/lacegiovanni17/event-ticket-BE/src/models/scopes"
	"gorm.io/gorm"
)

type Drift struct {
	EventID           string `json:"eventId"`
	AvailableTickets  int    `json:"availableTickets"`
	ExpectedAvailable int    `json:"expectedAvailable"`
	WaitingListCount  int    `json:"waitingListCount"`
	QueuedEntries     int    `json:"queuedEntries"`
}

type ReconcileReport struct {
	Checked     int     `json:"checked"`
	StatusFixed int     `json:"statusFixed"`
	Drifted     []Drift `json:"drifted,omitempty"`
}

// Reconcile audits every event's cached counters against its ticket orders and
// waiting-list rows. Counter drift is reported, never rewritten; a cached status
// that disagrees with the counters is corrected under the event lock.
func (a *Allocator) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}
	var ids []string
	if err := a.db.
		WithContext(ctx).
		Model(&models.Event{}).
		Order("created_at asc").
		Pluck("id", &ids).
		Error; err != nil {
		return nil, storageError(err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, storageError(err)
		}
		drift, fixed, err := a.reconcileEvent(ctx, id)
		if err != nil {
			log.Printf("[reconcile] Skipping event %s: %s\n", id, err.Error())
			continue
		}
		report.Checked++
		if fixed {
			report.StatusFixed++
		}
		if drift != nil {
			report.Drifted = append(report.Drifted, *drift)
		}
	}
	log.Printf("[reconcile] Checked %d events, %d drifted, %d statuses rewritten\n", report.Checked, len(report.Drifted), report.StatusFixed)
	return report, nil
}

func (a *Allocator) reconcileEvent(ctx context.Context, eventID string) (*Drift, bool, error) {
	var drift *Drift
	fixed := false
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := lockEvent(tx, eventID)
		if err != nil {
			return err
		}
		var booked, queued int64
		if err := tx.
			Model(&models.TicketOrder{}).
			Scopes(scopes.ForEvent(event.ID), scopes.WithBookedStatus).
			Count(&booked).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.WaitingListEntry{}).
			Scopes(scopes.ForEvent(event.ID)).
			Count(&queued).
			Error; err != nil {
			return err
		}
		expected := event.TotalTickets - int(booked)
		if expected != event.AvailableTickets || int(queued) != event.WaitingListCount {
			drift = &Drift{
				EventID:           event.ID,
				AvailableTickets:  event.AvailableTickets,
				ExpectedAvailable: expected,
				WaitingListCount:  event.WaitingListCount,
				QueuedEntries:     int(queued),
			}
			log.Printf("[reconcile] Drift on event %s: available=%d expected=%d waiting=%d queued=%d\n",
				event.ID, event.AvailableTickets, expected, event.WaitingListCount, queued)
		}
		if DeriveStatus(event.AvailableTickets, event.WaitingListCount) != event.Status {
			if err := saveEvent(tx, event, event.Version); err != nil {
				return err
			}
			fixed = true
		}
		return nil
	})
	if err != nil {
		return nil, false, storageError(err)
	}
	return drift, fixed, nil
}
