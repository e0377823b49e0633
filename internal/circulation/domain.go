package circulation

import (
	"time"

	"github.com/google/uuid"

	"itemdesk/internal/user"
)

// Checkout is a loan of an item to a user. ReturnedAt is nil while the loan
// is active; history rows always carry it.
type Checkout struct {
	ID           uuid.UUID  `json:"id"`
	ItemID       uuid.UUID  `json:"itemId"`
	CheckedOutBy uuid.UUID  `json:"checkedOutBy"`
	CheckedOutAt time.Time  `json:"checkedOutAt"`
	ReturnedAt   *time.Time `json:"returnedAt,omitempty"`
}

// CreateCheckout is the input to the checkout operation.
type CreateCheckout struct {
	ItemID       uuid.UUID
	CheckedOutBy uuid.UUID
	CheckedOutAt time.Time
}

// ReturnCheckout is the input to the return operation. The role decides
// whether a non-borrower may perform the return.
type ReturnCheckout struct {
	CheckoutID     uuid.UUID
	ItemID         uuid.UUID
	ReturnedBy     uuid.UUID
	ReturnedByRole user.Role
	ReturnedAt     time.Time
}
