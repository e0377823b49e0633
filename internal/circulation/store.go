package circulation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SlotState is an item's checkout slot as observed inside a transaction.
type SlotState int

const (
	// SlotItemMissing means the item does not exist in the catalog.
	SlotItemMissing SlotState = iota
	// SlotFree means the item exists and has no active checkout.
	SlotFree
	// SlotCheckedOut means the item has an active checkout.
	SlotCheckedOut
)

// Store is the storage capability the ledger runs against. Serializable
// isolation is part of the contract: InSerializableTx must execute fn so
// that concurrent transactions behave as if run in some sequential order.
// The Postgres store delegates that to the database; the in-memory store
// used in tests serializes transactions itself.
//
// The read methods take no explicit transaction and may observe state that
// is stale by the time the caller acts on it.
type Store interface {
	InSerializableTx(ctx context.Context, fn func(StateTx) error) error

	ActiveAll(ctx context.Context) ([]Checkout, error)
	ActiveForUser(ctx context.Context, userID uuid.UUID) ([]Checkout, error)
	ActiveForItem(ctx context.Context, itemID uuid.UUID) (*Checkout, error)
	ReturnedForItem(ctx context.Context, itemID uuid.UUID) ([]Checkout, error)
}

// StateTx is the surface available inside a serializable transaction. The
// mutating methods report the number of rows they touched so the protocol
// can detect writes that should have succeeded but affected nothing.
type StateTx interface {
	// SlotStateForItem probes the item and its checkout slot in one read.
	SlotStateForItem(itemID uuid.UUID) (SlotState, error)

	// FindActive returns the active checkout matching (checkoutID, itemID),
	// or nil when there is none.
	FindActive(checkoutID, itemID uuid.UUID) (*Checkout, error)

	InsertActive(co Checkout) (int64, error)

	// MoveToReturned copies the active checkout row into the history table
	// with the given return time. The active row is removed separately by
	// DeleteActive so both writes can be verified.
	MoveToReturned(checkoutID, itemID uuid.UUID, returnedAt time.Time) (int64, error)

	DeleteActive(checkoutID, itemID uuid.UUID) (int64, error)
}

// ItemCatalog is the catalog collaborator; the ledger only needs existence.
type ItemCatalog interface {
	ItemExists(ctx context.Context, itemID uuid.UUID) (bool, error)
}
