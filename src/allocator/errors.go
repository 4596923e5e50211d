package allocator

import (
	"errors"
	"fmt"

	"github.com/lacegiovanni17/event-ticket-BE/src/types"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrNotFound             = errors.New("not found")
	ErrEventNotFound        = fmt.Errorf("event %w", ErrNotFound)
	ErrTicketNotFound       = fmt.Errorf("ticket %w", ErrNotFound)
	ErrDuplicateName        = errors.New("event with this name already exists")
	ErrInsufficientBookings = errors.New("cannot cancel more tickets than booked")
	ErrStatusMismatch       = errors.New("event status mismatch")
	// ErrConflict is returned once the retry budget for a contended event is spent.
	ErrConflict = errors.New("concurrent update conflict")
	ErrStorage  = errors.New("storage failure")
)

// StatusMismatchError reports the stored status of an event that did not match a filter.
type StatusMismatchError struct {
	Expected types.EventStatus
	Current  types.EventStatus
}

func (e *StatusMismatchError) Error() string {
	return fmt.Sprintf("event status is not '%s'", e.Expected)
}

func (e *StatusMismatchError) Is(target error) bool {
	return target == ErrStatusMismatch
}

var terminal = []error{
	ErrInvalidInput,
	ErrUnauthenticated,
	ErrNotFound,
	ErrDuplicateName,
	ErrInsufficientBookings,
	ErrStatusMismatch,
	ErrConflict,
	ErrStorage,
}

func isClassified(err error) bool {
	for _, t := range terminal {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// storageError wraps anything that is not already part of the allocator taxonomy.
func storageError(err error) error {
	if err == nil || isClassified(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
