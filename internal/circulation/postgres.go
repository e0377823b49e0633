package circulation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"itemdesk/internal/postgres"
)

// PostgresStore implements Store against the shared pool.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type checkoutRow struct {
	CheckoutID   uuid.UUID    `db:"checkout_id"`
	ItemID       uuid.UUID    `db:"item_id"`
	UserID       uuid.UUID    `db:"user_id"`
	CheckedOutAt time.Time    `db:"checked_out_at"`
	ReturnedAt   sql.NullTime `db:"returned_at"`
}

func (r checkoutRow) toCheckout() Checkout {
	co := Checkout{
		ID:           r.CheckoutID,
		ItemID:       r.ItemID,
		CheckedOutBy: r.UserID,
		CheckedOutAt: r.CheckedOutAt,
	}
	if r.ReturnedAt.Valid {
		t := r.ReturnedAt.Time
		co.ReturnedAt = &t
	}
	return co
}

func (s *PostgresStore) InSerializableTx(ctx context.Context, fn func(StateTx) error) error {
	return postgres.InSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(&pgStateTx{ctx: ctx, tx: tx})
	})
}

func (s *PostgresStore) ActiveAll(ctx context.Context) ([]Checkout, error) {
	const q = `
		SELECT c.checkout_id, c.item_id, c.user_id, c.checked_out_at
		FROM checkouts AS c
		ORDER BY c.checked_out_at ASC`
	return s.selectCheckouts(ctx, q)
}

func (s *PostgresStore) ActiveForUser(ctx context.Context, userID uuid.UUID) ([]Checkout, error) {
	const q = `
		SELECT c.checkout_id, c.item_id, c.user_id, c.checked_out_at
		FROM checkouts AS c
		WHERE c.user_id = $1
		ORDER BY c.checked_out_at ASC`
	return s.selectCheckouts(ctx, q, userID)
}

func (s *PostgresStore) ActiveForItem(ctx context.Context, itemID uuid.UUID) (*Checkout, error) {
	const q = `
		SELECT c.checkout_id, c.item_id, c.user_id, c.checked_out_at
		FROM checkouts AS c
		WHERE c.item_id = $1`
	var row checkoutRow
	if err := s.db.GetContext(ctx, &row, q, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, postgres.Translate(err)
	}
	co := row.toCheckout()
	return &co, nil
}

func (s *PostgresStore) ReturnedForItem(ctx context.Context, itemID uuid.UUID) ([]Checkout, error) {
	const q = `
		SELECT rc.checkout_id, rc.item_id, rc.user_id, rc.checked_out_at, rc.returned_at
		FROM returned_checkouts AS rc
		WHERE rc.item_id = $1
		ORDER BY rc.checked_out_at DESC`
	var rows []struct {
		CheckoutID   uuid.UUID `db:"checkout_id"`
		ItemID       uuid.UUID `db:"item_id"`
		UserID       uuid.UUID `db:"user_id"`
		CheckedOutAt time.Time `db:"checked_out_at"`
		ReturnedAt   time.Time `db:"returned_at"`
	}
	if err := s.db.SelectContext(ctx, &rows, q, itemID); err != nil {
		return nil, postgres.Translate(err)
	}
	out := make([]Checkout, 0, len(rows))
	for _, r := range rows {
		t := r.ReturnedAt
		out = append(out, Checkout{
			ID:           r.CheckoutID,
			ItemID:       r.ItemID,
			CheckedOutBy: r.UserID,
			CheckedOutAt: r.CheckedOutAt,
			ReturnedAt:   &t,
		})
	}
	return out, nil
}

func (s *PostgresStore) selectCheckouts(ctx context.Context, query string, args ...any) ([]Checkout, error) {
	var rows []checkoutRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, postgres.Translate(err)
	}
	out := make([]Checkout, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toCheckout())
	}
	return out, nil
}

// pgStateTx implements StateTx on an open serializable transaction.
type pgStateTx struct {
	ctx context.Context
	tx  *sqlx.Tx
}

func (t *pgStateTx) SlotStateForItem(itemID uuid.UUID) (SlotState, error) {
	// One probe answers both questions: a missing row means the item does
	// not exist, a non-null checkout_id means the slot is taken.
	const q = `
		SELECT i.item_id, c.checkout_id
		FROM items AS i
		LEFT OUTER JOIN checkouts AS c USING (item_id)
		WHERE i.item_id = $1`
	var row struct {
		ItemID     uuid.UUID     `db:"item_id"`
		CheckoutID uuid.NullUUID `db:"checkout_id"`
	}
	if err := t.tx.GetContext(t.ctx, &row, q, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SlotItemMissing, nil
		}
		return SlotItemMissing, postgres.Translate(err)
	}
	if row.CheckoutID.Valid {
		return SlotCheckedOut, nil
	}
	return SlotFree, nil
}

func (t *pgStateTx) FindActive(checkoutID, itemID uuid.UUID) (*Checkout, error) {
	const q = `
		SELECT c.checkout_id, c.item_id, c.user_id, c.checked_out_at
		FROM checkouts AS c
		WHERE c.checkout_id = $1 AND c.item_id = $2`
	var row checkoutRow
	if err := t.tx.GetContext(t.ctx, &row, q, checkoutID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, postgres.Translate(err)
	}
	co := row.toCheckout()
	return &co, nil
}

func (t *pgStateTx) InsertActive(co Checkout) (int64, error) {
	const q = `
		INSERT INTO checkouts (checkout_id, item_id, user_id, checked_out_at)
		VALUES ($1, $2, $3, $4)`
	res, err := t.tx.ExecContext(t.ctx, q, co.ID, co.ItemID, co.CheckedOutBy, co.CheckedOutAt)
	if err != nil {
		return 0, postgres.Translate(err)
	}
	return res.RowsAffected()
}

func (t *pgStateTx) MoveToReturned(checkoutID, itemID uuid.UUID, returnedAt time.Time) (int64, error) {
	const q = `
		INSERT INTO returned_checkouts (checkout_id, item_id, user_id, checked_out_at, returned_at)
		SELECT checkout_id, item_id, user_id, checked_out_at, $3
		FROM checkouts
		WHERE checkout_id = $1 AND item_id = $2`
	res, err := t.tx.ExecContext(t.ctx, q, checkoutID, itemID, returnedAt)
	if err != nil {
		return 0, postgres.Translate(err)
	}
	return res.RowsAffected()
}

func (t *pgStateTx) DeleteActive(checkoutID, itemID uuid.UUID) (int64, error) {
	const q = `DELETE FROM checkouts WHERE checkout_id = $1 AND item_id = $2`
	res, err := t.tx.ExecContext(t.ctx, q, checkoutID, itemID)
	if err != nil {
		return 0, postgres.Translate(err)
	}
	return res.RowsAffected()
}
