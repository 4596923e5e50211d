package allocator

import (
	"context"
	"errors"
	"log"

	"github.com/lacegiovanni17/event-ticket-BE/src/types"
)

// Publisher receives activities after the transaction that produced them has committed.
type Publisher interface {
	Publish(ctx context.Context, activity types.Activity) error
}

type PublisherFunc func(ctx context.Context, activity types.Activity) error

func (f PublisherFunc) Publish(ctx context.Context, activity types.Activity) error {
	return f(ctx, activity)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, types.Activity) error { return nil }

// NopPublisher discards every activity.
func NopPublisher() Publisher {
	return nopPublisher{}
}

// FanOut delivers an activity to every publisher and joins their errors.
type FanOut []Publisher

func (f FanOut) Publish(ctx context.Context, activity types.Activity) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, activity); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Allocator) publish(ctx context.Context, activities ...types.Activity) {
	for _, activity := range activities {
		if err := a.publisher.Publish(ctx, activity); err != nil {
			log.Printf("[allocator] Failed to publish %s for event %s: %s\n", activity.Type, activity.EventID, err.Error())
		}
	}
}
