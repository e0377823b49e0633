package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"itemdesk/internal/apperr"
	"itemdesk/internal/postgres"
)

var dialect = goqu.Dialect("postgres")

// PostgresStore implements Store against the shared pool.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type itemRow struct {
	ItemID      uuid.UUID      `db:"item_id"`
	Category    string         `db:"category"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Author      sql.NullString `db:"author"`
	ISBN        sql.NullString `db:"isbn"`
	MACAddress  sql.NullString `db:"mac_address"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r itemRow) toItem() Item {
	item := Item{
		ID:          r.ItemID,
		Category:    Category(r.Category),
		Name:        r.Name,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	switch item.Category {
	case CategoryBook:
		item.Book = &BookSpec{Author: r.Author.String, ISBN: r.ISBN.String}
	case CategoryLaptop:
		item.Laptop = &LaptopSpec{MACAddress: r.MACAddress.String}
	}
	return item
}

func (s *PostgresStore) Insert(ctx context.Context, item Item) error {
	return postgres.InSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		const q = `
			INSERT INTO items (item_id, category, name, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`
		res, err := tx.ExecContext(ctx, q,
			item.ID, string(item.Category), item.Name, item.Description, item.CreatedAt, item.UpdatedAt)
		if err != nil {
			return postgres.Translate(err)
		}
		if n, _ := res.RowsAffected(); n < 1 {
			return apperr.New(apperr.WriteFailed, "no item record has been created")
		}

		switch item.Category {
		case CategoryBook:
			const bq = `INSERT INTO books (item_id, author, isbn) VALUES ($1, $2, $3)`
			if _, err := tx.ExecContext(ctx, bq, item.ID, item.Book.Author, item.Book.ISBN); err != nil {
				return postgres.Translate(err)
			}
		case CategoryLaptop:
			const lq = `INSERT INTO laptops (item_id, mac_address) VALUES ($1, $2)`
			if _, err := tx.ExecContext(ctx, lq, item.ID, item.Laptop.MACAddress); err != nil {
				return postgres.Translate(err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) FindAll(ctx context.Context, opts ListOptions) (*PaginatedItems, error) {
	base := dialect.From(goqu.T("items").As("i"))
	if opts.Category != nil {
		base = base.Where(goqu.Ex{"i.category": string(*opts.Category)})
	}

	countSQL, countArgs, err := base.Select(goqu.COUNT(goqu.Star())).Prepared(true).ToSQL()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "build count query", err)
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, postgres.Translate(err)
	}

	listSQL, listArgs, err := base.
		LeftJoin(goqu.T("books").As("b"), goqu.On(goqu.I("i.item_id").Eq(goqu.I("b.item_id")))).
		LeftJoin(goqu.T("laptops").As("l"), goqu.On(goqu.I("i.item_id").Eq(goqu.I("l.item_id")))).
		Select(
			goqu.I("i.item_id"), goqu.I("i.category"), goqu.I("i.name"), goqu.I("i.description"),
			goqu.I("b.author").As("author"), goqu.I("b.isbn").As("isbn"),
			goqu.I("l.mac_address").As("mac_address"),
			goqu.I("i.created_at"), goqu.I("i.updated_at"),
		).
		Order(goqu.I("i.created_at").Desc()).
		Limit(uint(opts.Limit)).
		Offset(uint(opts.Offset)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "build list query", err)
	}

	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows, listSQL, listArgs...); err != nil {
		return nil, postgres.Translate(err)
	}

	items := make([]Item, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toItem())
		ids = append(ids, r.ItemID.String())
	}

	checkouts, err := s.findCheckouts(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if co, ok := checkouts[items[i].ID]; ok {
			c := co
			items[i].Checkout = &c
		}
	}

	return &PaginatedItems{
		Total:  total,
		Limit:  opts.Limit,
		Offset: opts.Offset,
		Items:  items,
	}, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*Item, error) {
	const q = `
		SELECT
			i.item_id, i.category, i.name, i.description,
			b.author AS author, b.isbn AS isbn,
			l.mac_address AS mac_address,
			i.created_at, i.updated_at
		FROM items AS i
		LEFT JOIN books b ON i.item_id = b.item_id
		LEFT JOIN laptops l ON i.item_id = l.item_id
		WHERE i.item_id = $1`
	var row itemRow
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Newf(apperr.NotFound, "item (%s) not found", id)
		}
		return nil, postgres.Translate(err)
	}

	item := row.toItem()
	checkouts, err := s.findCheckouts(ctx, []string{id.String()})
	if err != nil {
		return nil, err
	}
	if co, ok := checkouts[id]; ok {
		item.Checkout = &co
	}
	return &item, nil
}

func (s *PostgresStore) Update(ctx context.Context, item Item) error {
	return postgres.InSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var category string
		const cq = `SELECT category FROM items WHERE item_id = $1`
		if err := tx.GetContext(ctx, &category, cq, item.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.Newf(apperr.NotFound, "item (%s) not found", item.ID)
			}
			return postgres.Translate(err)
		}
		if Category(category) != item.Category {
			return apperr.New(apperr.Validation, "item category cannot be changed")
		}

		const q = `
			UPDATE items
			SET name = $2, description = $3, updated_at = $4
			WHERE item_id = $1`
		res, err := tx.ExecContext(ctx, q, item.ID, item.Name, item.Description, item.UpdatedAt)
		if err != nil {
			return postgres.Translate(err)
		}
		if n, _ := res.RowsAffected(); n < 1 {
			return apperr.Newf(apperr.NotFound, "item (%s) not found", item.ID)
		}

		switch item.Category {
		case CategoryBook:
			const bq = `UPDATE books SET author = $2, isbn = $3 WHERE item_id = $1`
			if _, err := tx.ExecContext(ctx, bq, item.ID, item.Book.Author, item.Book.ISBN); err != nil {
				return postgres.Translate(err)
			}
		case CategoryLaptop:
			const lq = `UPDATE laptops SET mac_address = $2 WHERE item_id = $1`
			if _, err := tx.ExecContext(ctx, lq, item.ID, item.Laptop.MACAddress); err != nil {
				return postgres.Translate(err)
			}
		}
		return nil
	})
}

// Delete removes an item unless it is currently checked out. The existence
// check and the delete run in one serializable transaction so a concurrent
// checkout cannot slip in between them.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	return postgres.InSerializableTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var checkedOut bool
		const cq = `SELECT EXISTS (SELECT 1 FROM checkouts WHERE item_id = $1)`
		if err := tx.GetContext(ctx, &checkedOut, cq, id); err != nil {
			return postgres.Translate(err)
		}
		if checkedOut {
			return apperr.Newf(apperr.Conflict, "item (%s) is currently checked out", id)
		}

		const q = `DELETE FROM items WHERE item_id = $1`
		res, err := tx.ExecContext(ctx, q, id)
		if err != nil {
			return postgres.Translate(err)
		}
		if n, _ := res.RowsAffected(); n < 1 {
			return apperr.Newf(apperr.NotFound, "item (%s) not found", id)
		}
		return nil
	})
}

func (s *PostgresStore) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	const q = `SELECT EXISTS (SELECT 1 FROM items WHERE item_id = $1)`
	if err := s.db.GetContext(ctx, &exists, q, id); err != nil {
		return false, postgres.Translate(err)
	}
	return exists, nil
}

func (s *PostgresStore) findCheckouts(ctx context.Context, itemIDs []string) (map[uuid.UUID]ItemCheckout, error) {
	if len(itemIDs) == 0 {
		return map[uuid.UUID]ItemCheckout{}, nil
	}

	const q = `
		SELECT c.checkout_id, c.item_id, c.user_id, u.name AS user_name, c.checked_out_at
		FROM checkouts AS c
		INNER JOIN users AS u USING (user_id)
		WHERE c.item_id = ANY ($1)`
	var rows []struct {
		CheckoutID   uuid.UUID `db:"checkout_id"`
		ItemID       uuid.UUID `db:"item_id"`
		UserID       uuid.UUID `db:"user_id"`
		UserName     string    `db:"user_name"`
		CheckedOutAt time.Time `db:"checked_out_at"`
	}
	if err := s.db.SelectContext(ctx, &rows, q, pq.Array(itemIDs)); err != nil {
		return nil, postgres.Translate(err)
	}

	out := make(map[uuid.UUID]ItemCheckout, len(rows))
	for _, r := range rows {
		out[r.ItemID] = ItemCheckout{
			CheckoutID:   r.CheckoutID,
			UserID:       r.UserID,
			UserName:     r.UserName,
			CheckedOutAt: r.CheckedOutAt,
		}
	}
	return out, nil
}
