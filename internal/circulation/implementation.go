package circulation

import (
	"context"

	"github.com/google/uuid"

	"itemdesk/internal/apperr"
	"itemdesk/internal/user"
)

// service implements the Service interface. The check-then-act sequences in
// Checkout and Return are correct only because the store runs them under
// serializable isolation; at weaker levels two racing checkouts can both
// observe a free slot and both insert.
type service struct {
	store   Store
	catalog ItemCatalog
}

// NewService creates a new checkout ledger instance.
func NewService(store Store, catalog ItemCatalog) Service {
	return &service{store: store, catalog: catalog}
}

func (s *service) Checkout(ctx context.Context, ev CreateCheckout) (*Checkout, error) {
	co := Checkout{
		ID:           uuid.New(),
		ItemID:       ev.ItemID,
		CheckedOutBy: ev.CheckedOutBy,
		CheckedOutAt: ev.CheckedOutAt,
	}

	err := s.store.InSerializableTx(ctx, func(tx StateTx) error {
		state, err := tx.SlotStateForItem(ev.ItemID)
		if err != nil {
			return err
		}
		switch state {
		case SlotItemMissing:
			return apperr.Newf(apperr.NotFound, "item (%s) not found", ev.ItemID)
		case SlotCheckedOut:
			return apperr.Newf(apperr.Conflict, "the item (%s) has already been checked out", ev.ItemID)
		}

		n, err := tx.InsertActive(co)
		if err != nil {
			return err
		}
		if n < 1 {
			return apperr.New(apperr.WriteFailed, "no checkout record has been created")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &co, nil
}

func (s *service) Return(ctx context.Context, ev ReturnCheckout) error {
	return s.store.InSerializableTx(ctx, func(tx StateTx) error {
		co, err := tx.FindActive(ev.CheckoutID, ev.ItemID)
		if err != nil {
			return err
		}
		if co == nil {
			return apperr.Newf(apperr.NotFound, "checkout (%s) for item (%s) not found", ev.CheckoutID, ev.ItemID)
		}
		if co.CheckedOutBy != ev.ReturnedBy && ev.ReturnedByRole != user.RoleAdmin {
			return apperr.Newf(apperr.Forbidden,
				"checkout (%s) of item (%s) cannot be returned by user (%s)",
				ev.CheckoutID, ev.ItemID, ev.ReturnedBy)
		}

		// Both writes are verified: zero rows affected here means a
		// concurrent mutation slipped past the isolation level and is a
		// consistency bug, not a user error.
		n, err := tx.MoveToReturned(ev.CheckoutID, ev.ItemID, ev.ReturnedAt)
		if err != nil {
			return err
		}
		if n < 1 {
			return apperr.New(apperr.WriteFailed, "no returned record has been created")
		}

		n, err = tx.DeleteActive(ev.CheckoutID, ev.ItemID)
		if err != nil {
			return err
		}
		if n < 1 {
			return apperr.New(apperr.WriteFailed, "no checkout record has been deleted")
		}
		return nil
	})
}

func (s *service) ListActive(ctx context.Context) ([]Checkout, error) {
	return s.store.ActiveAll(ctx)
}

func (s *service) ListActiveForUser(ctx context.Context, userID uuid.UUID) ([]Checkout, error) {
	return s.store.ActiveForUser(ctx, userID)
}

func (s *service) HistoryForItem(ctx context.Context, itemID uuid.UUID) ([]Checkout, error) {
	exists, err := s.catalog.ItemExists(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.Newf(apperr.NotFound, "item (%s) not found", itemID)
	}

	history, err := s.store.ReturnedForItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	active, err := s.store.ActiveForItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		history = append([]Checkout{*active}, history...)
	}
	return history, nil
}
