package circulation

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the checkout ledger.
type Service interface {
	// Checkout creates an active checkout for a free item. Fails with
	// NotFound when the item does not exist and Conflict when the item
	// already has an active checkout.
	Checkout(ctx context.Context, ev CreateCheckout) (*Checkout, error)

	// Return moves an active checkout into the history. Only the original
	// borrower or an admin may return a checkout.
	Return(ctx context.Context, ev ReturnCheckout) error

	// ListActive returns all active checkouts, oldest first.
	ListActive(ctx context.Context) ([]Checkout, error)

	// ListActiveForUser returns a user's active checkouts, oldest first.
	ListActiveForUser(ctx context.Context, userID uuid.UUID) ([]Checkout, error)

	// HistoryForItem returns the item's unified timeline: the active
	// checkout (if any) first, then returned checkouts newest first.
	HistoryForItem(ctx context.Context, itemID uuid.UUID) ([]Checkout, error)
}
