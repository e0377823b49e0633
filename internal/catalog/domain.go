package catalog

import (
	"net"
	"time"

	"github.com/google/uuid"

	"itemdesk/internal/apperr"
)

// Category tags the kind of loanable item.
type Category string

const (
	CategoryGeneral Category = "general"
	CategoryBook    Category = "book"
	CategoryLaptop  Category = "laptop"
)

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryGeneral, CategoryBook, CategoryLaptop:
		return Category(s), nil
	default:
		return "", apperr.Newf(apperr.Validation, "unknown category %q", s)
	}
}

// BookSpec is the payload for book items.
type BookSpec struct {
	Author string `json:"author"`
	ISBN   string `json:"isbn"`
}

// LaptopSpec is the payload for laptop items. The MAC address is stored in
// its canonical colon-separated form.
type LaptopSpec struct {
	MACAddress string `json:"macAddress"`
}

// ItemCheckout is the current-loan summary attached to a fetched item.
type ItemCheckout struct {
	CheckoutID   uuid.UUID `json:"checkoutId"`
	UserID       uuid.UUID `json:"userId"`
	UserName     string    `json:"userName"`
	CheckedOutAt time.Time `json:"checkedOutAt"`
}

// Item is a loanable unit: shared base fields plus exactly one category
// payload. Exactly one of Book/Laptop is non-nil for those categories;
// general items carry neither.
type Item struct {
	ID          uuid.UUID     `json:"id"`
	Category    Category      `json:"category"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Book        *BookSpec     `json:"book,omitempty"`
	Laptop      *LaptopSpec   `json:"laptop,omitempty"`
	Checkout    *ItemCheckout `json:"checkout,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ItemFields carries the writable fields for create and update operations.
type ItemFields struct {
	Category    Category
	Name        string
	Description string
	Author      string
	ISBN        string
	MACAddress  string
}

// Validate checks the base fields and the category payload, normalizing the
// MAC address to its canonical form.
func (f *ItemFields) Validate() error {
	if _, err := ParseCategory(string(f.Category)); err != nil {
		return err
	}
	if f.Name == "" {
		return apperr.New(apperr.Validation, "name must not be empty")
	}
	switch f.Category {
	case CategoryBook:
		if f.Author == "" {
			return apperr.New(apperr.Validation, "books require an author")
		}
		if f.ISBN == "" {
			return apperr.New(apperr.Validation, "books require an isbn")
		}
	case CategoryLaptop:
		hw, err := net.ParseMAC(f.MACAddress)
		if err != nil {
			return apperr.Newf(apperr.Validation, "invalid mac address %q", f.MACAddress)
		}
		f.MACAddress = hw.String()
	}
	return nil
}

// ListOptions selects a page of the catalog.
type ListOptions struct {
	Limit    int64
	Offset   int64
	Category *Category
}

// PaginatedItems is one page of the catalog plus the unpaginated total.
type PaginatedItems struct {
	Total  int64  `json:"total"`
	Limit  int64  `json:"limit"`
	Offset int64  `json:"offset"`
	Items  []Item `json:"items"`
}
