package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// service implements the Service interface.
type service struct {
	store Store
}

// NewService creates a new catalog service instance.
func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, fields ItemFields) (*Item, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	item := Item{
		ID:          uuid.New(),
		Category:    fields.Category,
		Name:        fields.Name,
		Description: fields.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	attachPayload(&item, fields)

	if err := s.store.Insert(ctx, item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *service) List(ctx context.Context, opts ListOptions) (*PaginatedItems, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	if opts.Limit > maxListLimit {
		opts.Limit = maxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return s.store.FindAll(ctx, opts)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Item, error) {
	return s.store.FindByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, fields ItemFields) error {
	if err := fields.Validate(); err != nil {
		return err
	}

	item := Item{
		ID:          id,
		Category:    fields.Category,
		Name:        fields.Name,
		Description: fields.Description,
		UpdatedAt:   time.Now().UTC(),
	}
	attachPayload(&item, fields)

	return s.store.Update(ctx, item)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *service) ItemExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.store.Exists(ctx, id)
}

func attachPayload(item *Item, fields ItemFields) {
	switch fields.Category {
	case CategoryBook:
		item.Book = &BookSpec{Author: fields.Author, ISBN: fields.ISBN}
	case CategoryLaptop:
		item.Laptop = &LaptopSpec{MACAddress: fields.MACAddress}
	}
}
