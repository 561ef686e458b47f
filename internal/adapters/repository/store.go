// Package repository defines the fish store interface and its adapters.
package repository

import (
	"context"

	"github.com/okian/fishery/internal/domain/model"
)

// Store is the external database holding fish records. It owns persistence,
// Id assignment and ordering; callers never cache what it returns.
type Store interface {
	// List returns every record ordered by Name ascending.
	List(ctx context.Context) ([]model.FishRecord, error)

	// Create inserts one record. The store assigns its Id; rec.ID is ignored.
	Create(ctx context.Context, rec model.FishRecord) error

	// Update overwrites Name, Sell, Shadow and Where of the record with rec.ID.
	// Updating an Id that does not exist is not an error.
	Update(ctx context.Context, rec model.FishRecord) error

	// Delete removes the record with the given Id.
	// Deleting an Id that does not exist is not an error.
	Delete(ctx context.Context, id int64) error

	// Close releases connections held by the store.
	Close() error
}

// Pinger is implemented by stores that can check their backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}
