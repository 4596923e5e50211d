package scopes

import (
	"github.com/lacegiovanni17/event-ticket-BE/src/types"
	"gorm.io/gorm"
)

func WithID(id string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func WithIDs(ids ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id IN (?)", ids)
	}
}

func ForEvent(eventID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("event_id = ?", eventID)
	}
}

func ForUser(userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func WithBookedStatus(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", types.TICKET_BOOKED)
}

// InQueueOrder sorts waiting-list rows by ascending position.
func InQueueOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func OldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at asc").Order("id asc")
}
