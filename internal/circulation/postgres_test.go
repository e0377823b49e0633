package circulation

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemdesk/internal/apperr"
	"itemdesk/internal/catalog"
	"itemdesk/internal/postgres"
	"itemdesk/internal/user"
)

// setupTestDB connects to a local PostgreSQL instance and skips the test when
// none is reachable, so the suite stays runnable without infrastructure.
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

func seedUser(t *testing.T, db *sqlx.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	const q = `
		INSERT INTO users (user_id, name, email, password_hash, password_salt, role, created_at, updated_at)
		VALUES ($1, $2, $3, 'x', 'x', $4, now(), now())`
	_, err := db.Exec(q, id, "Test User", fmt.Sprintf("%s@example.com", id), string(user.RoleUser))
	require.NoError(t, err)
	return id
}

func seedItem(t *testing.T, db *sqlx.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	const q = `
		INSERT INTO items (item_id, category, name, description, created_at, updated_at)
		VALUES ($1, 'general', 'Projector', '', now(), now())`
	_, err := db.Exec(q, id)
	require.NoError(t, err)
	return id
}

func TestPostgresCheckoutRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	svc := NewService(NewPostgresStore(db), catalog.NewService(catalog.NewPostgresStore(db)))
	userID := seedUser(t, db)
	itemID := seedItem(t, db)

	outAt := time.Now().UTC().Truncate(time.Microsecond)
	co, err := svc.Checkout(ctx, CreateCheckout{
		ItemID:       itemID,
		CheckedOutBy: userID,
		CheckedOutAt: outAt,
	})
	require.NoError(t, err)

	// Second checkout of the same item must be rejected.
	_, err = svc.Checkout(ctx, CreateCheckout{
		ItemID:       itemID,
		CheckedOutBy: userID,
		CheckedOutAt: time.Now().UTC(),
	})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, co.ID, active[0].ID)

	inAt := outAt.Add(time.Hour)
	require.NoError(t, svc.Return(ctx, ReturnCheckout{
		CheckoutID:     co.ID,
		ItemID:         itemID,
		ReturnedBy:     userID,
		ReturnedByRole: user.RoleUser,
		ReturnedAt:     inAt,
	}))

	// The active row moved to history in one transaction.
	active, err = svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	history, err := svc.HistoryForItem(ctx, itemID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, co.ID, history[0].ID)
	require.NotNil(t, history[0].ReturnedAt)
	assert.True(t, history[0].ReturnedAt.Equal(inAt))
}

func TestPostgresCheckoutUnknownItem(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	svc := NewService(NewPostgresStore(db), catalog.NewService(catalog.NewPostgresStore(db)))
	userID := seedUser(t, db)

	_, err := svc.Checkout(ctx, CreateCheckout{
		ItemID:       uuid.New(),
		CheckedOutBy: userID,
		CheckedOutAt: time.Now().UTC(),
	})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestPostgresReturnMismatchedPair(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	svc := NewService(NewPostgresStore(db), catalog.NewService(catalog.NewPostgresStore(db)))
	userID := seedUser(t, db)
	itemID := seedItem(t, db)
	otherItemID := seedItem(t, db)

	co, err := svc.Checkout(ctx, CreateCheckout{
		ItemID:       itemID,
		CheckedOutBy: userID,
		CheckedOutAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	err = svc.Return(ctx, ReturnCheckout{
		CheckoutID:     co.ID,
		ItemID:         otherItemID,
		ReturnedBy:     userID,
		ReturnedByRole: user.RoleUser,
		ReturnedAt:     time.Now().UTC(),
	})
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
