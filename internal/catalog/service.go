package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the item catalog.
type Service interface {
	Create(ctx context.Context, fields ItemFields) (*Item, error)
	List(ctx context.Context, opts ListOptions) (*PaginatedItems, error)
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, id uuid.UUID, fields ItemFields) error
	Delete(ctx context.Context, id uuid.UUID) error

	// ItemExists is the collaborator surface consumed by the checkout
	// ledger.
	ItemExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Store is the persistence surface the service runs against.
type Store interface {
	Insert(ctx context.Context, item Item) error
	FindAll(ctx context.Context, opts ListOptions) (*PaginatedItems, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	Update(ctx context.Context, item Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
