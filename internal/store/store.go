// Package store persists teacher registrations: the mapping from a
// messaging recipient ID to that teacher's feed URL, roster URL and own
// email address.
package store

import (
	"context"

	"tutorbill/internal/model"
)

// Store is the registration persistence interface. Absence of a
// registration is an expected outcome and is reported via ok, not as an
// error.
type Store interface {
	// Get returns the registration for recipient, if any.
	Get(ctx context.Context, recipient string) (model.Registration, bool, error)

	// Upsert inserts or replaces the registration for reg.Recipient.
	Upsert(ctx context.Context, reg model.Registration) error

	// Delete removes the registration for recipient. Deleting an absent
	// registration is not an error.
	Delete(ctx context.Context, recipient string) error

	// List returns all registrations ordered by recipient.
	List(ctx context.Context) ([]model.Registration, error)

	// Close releases the underlying resources.
	Close() error
}
