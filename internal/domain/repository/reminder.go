package repository

import (
	"context"

	"memento/internal/domain/constant"
	"memento/internal/domain/entity"
)

// ReminderRepository is the key-value persistence behind the reminder store.
// Each owner maps to one record holding the owner's complete reminder list; writes
// always replace the whole list.
type ReminderRepository interface {
	// GetAll returns every stored list of the given kind, keyed by Owner.Key().
	GetAll(ctx context.Context, kind constant.OwnerKind) (map[string][]entity.Record, error)
	// Get returns the list stored for owner, empty if none.
	Get(ctx context.Context, owner entity.Owner) ([]entity.Record, error)
	// SetList replaces the list stored for owner. An empty list removes the record.
	SetList(ctx context.Context, owner entity.Owner, records []entity.Record) error
}
