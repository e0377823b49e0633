package catalog

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemdesk/internal/apperr"
	"itemdesk/internal/postgres"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	get := func(key, def string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return def
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		get("PGHOST", "localhost"),
		get("PGPORT", "5432"),
		get("PGUSER", "postgres"),
		get("PGPASSWORD", "postgres"),
		get("PGDATABASE", "itemdesk_test"),
	)

	ctx := context.Background()
	db, err := postgres.Open(ctx, dsn)
	if err != nil {
		t.Skipf("skipping: could not connect to postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE TABLE returned_checkouts, checkouts, books, laptops, items, users CASCADE`)
	require.NoError(t, err)

	return db
}

func TestPostgresItemLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(NewPostgresStore(db))

	book, err := svc.Create(ctx, ItemFields{
		Category: CategoryBook,
		Name:     "The Go Programming Language",
		Author:   "Donovan",
		ISBN:     "978-0134190440",
	})
	require.NoError(t, err)

	laptop, err := svc.Create(ctx, ItemFields{
		Category:   CategoryLaptop,
		Name:       "ThinkPad",
		MACAddress: "00:1a:2b:3c:4d:5e",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, book.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Book)
	assert.Equal(t, "Donovan", got.Book.Author)
	assert.Nil(t, got.Checkout)

	page, err := svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)

	cat := CategoryLaptop
	page, err = svc.List(ctx, ListOptions{Category: &cat})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, laptop.ID, page.Items[0].ID)

	require.NoError(t, svc.Update(ctx, book.ID, ItemFields{
		Category: CategoryBook,
		Name:     "The Go Programming Language, 2nd",
		Author:   "Donovan and Kernighan",
		ISBN:     "978-0134190440",
	}))
	got, err = svc.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Donovan and Kernighan", got.Book.Author)

	require.NoError(t, svc.Delete(ctx, laptop.ID))
	_, err = svc.Get(ctx, laptop.ID)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestPostgresDeleteCheckedOutItem(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewService(NewPostgresStore(db))

	item, err := svc.Create(ctx, ItemFields{Category: CategoryGeneral, Name: "Projector"})
	require.NoError(t, err)

	userID := uuid.New()
	_, err = db.ExecContext(ctx, `
		INSERT INTO users (user_id, name, email, password_hash, password_salt, role, created_at, updated_at)
		VALUES ($1, 'Borrower', $2, 'x', 'x', 'User', now(), now())`,
		userID, fmt.Sprintf("%s@example.com", userID))
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO checkouts (checkout_id, item_id, user_id, checked_out_at)
		VALUES ($1, $2, $3, now())`,
		uuid.New(), item.ID, userID)
	require.NoError(t, err)

	err = svc.Delete(ctx, item.ID)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}
