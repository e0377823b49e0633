package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemdesk/internal/apperr"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	items    map[uuid.UUID]Item
	lastOpts ListOptions
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: make(map[uuid.UUID]Item)}
}

func (f *fakeStore) Insert(_ context.Context, item Item) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeStore) FindAll(_ context.Context, opts ListOptions) (*PaginatedItems, error) {
	f.lastOpts = opts
	out := make([]Item, 0, len(f.items))
	for _, item := range f.items {
		if opts.Category != nil && item.Category != *opts.Category {
			continue
		}
		out = append(out, item)
	}
	return &PaginatedItems{
		Total:  int64(len(out)),
		Limit:  opts.Limit,
		Offset: opts.Offset,
		Items:  out,
	}, nil
}

func (f *fakeStore) FindByID(_ context.Context, id uuid.UUID) (*Item, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, apperr.Newf(apperr.NotFound, "item (%s) not found", id)
	}
	return &item, nil
}

func (f *fakeStore) Update(_ context.Context, item Item) error {
	existing, ok := f.items[item.ID]
	if !ok {
		return apperr.Newf(apperr.NotFound, "item (%s) not found", item.ID)
	}
	if existing.Category != item.Category {
		return apperr.New(apperr.Validation, "item category cannot be changed")
	}
	item.CreatedAt = existing.CreatedAt
	f.items[item.ID] = item
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return apperr.Newf(apperr.NotFound, "item (%s) not found", id)
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

func TestCreateAttachesPayload(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	book, err := svc.Create(ctx, ItemFields{
		Category: CategoryBook,
		Name:     "The Go Programming Language",
		Author:   "Donovan",
		ISBN:     "978-0134190440",
	})
	require.NoError(t, err)
	require.NotNil(t, book.Book)
	assert.Nil(t, book.Laptop)
	assert.Equal(t, "Donovan", book.Book.Author)

	laptop, err := svc.Create(ctx, ItemFields{
		Category:   CategoryLaptop,
		Name:       "ThinkPad",
		MACAddress: "00:1a:2b:3c:4d:5e",
	})
	require.NoError(t, err)
	require.NotNil(t, laptop.Laptop)
	assert.Nil(t, laptop.Book)

	general, err := svc.Create(ctx, ItemFields{Category: CategoryGeneral, Name: "Projector"})
	require.NoError(t, err)
	assert.Nil(t, general.Book)
	assert.Nil(t, general.Laptop)
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Create(context.Background(), ItemFields{Category: CategoryBook, Name: "No Author"})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestListClampsPagination(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(defaultListLimit), store.lastOpts.Limit)

	_, err = svc.List(ctx, ListOptions{Limit: 5000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, int64(maxListLimit), store.lastOpts.Limit)
	assert.Equal(t, int64(0), store.lastOpts.Offset)
}

func TestUpdateKeepsCategory(t *testing.T) {
	svc := NewService(newFakeStore())
	ctx := context.Background()

	item, err := svc.Create(ctx, ItemFields{Category: CategoryGeneral, Name: "Projector"})
	require.NoError(t, err)

	err = svc.Update(ctx, item.ID, ItemFields{
		Category: CategoryBook,
		Name:     "Projector Manual",
		Author:   "Someone",
		ISBN:     "123",
	})
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	require.NoError(t, svc.Update(ctx, item.ID, ItemFields{Category: CategoryGeneral, Name: "HD Projector"}))
	got, err := svc.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "HD Projector", got.Name)
}
