package service

import (
	"context"
	"time"

	"memento/internal/domain/entity"
)

// Notifier delivers a fired reminder to its destination. Implementations return an
// error wrapping ErrDeliveryPermanent when the destination can never be reached
// (blocked, deleted, forbidden) so that callers can tell it apart from outages.
type Notifier interface {
	Deliver(ctx context.Context, dest entity.Destination, r *entity.Reminder) error
}

// TimeResolver turns a user time expression into an absolute UTC instant.
type TimeResolver interface {
	Resolve(expr, timezone string) (time.Time, error)
}
