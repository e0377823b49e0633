package circulation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"itemdesk/internal/apperr"
)

// MemStore is an in-memory Store (and ItemCatalog) used by the service tests
// and local development. Transactions are serialized with a mutex, which is a
// legitimate implementation of the serializable contract, and writes are
// staged so a failing transaction leaves no partial state.
//
// The fault hooks simulate the failure modes of a real store: AbortNextTx
// stands in for a serialization conflict, and DropNextWrite makes the next
// mutating statement report zero rows affected, which is how the protocol's
// defensive checks get exercised.
type MemStore struct {
	mu       sync.Mutex
	items    map[uuid.UUID]struct{}
	active   map[uuid.UUID]Checkout // keyed by checkout id
	returned []Checkout

	abortNextTx   bool
	dropNextWrite bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		items:  make(map[uuid.UUID]struct{}),
		active: make(map[uuid.UUID]Checkout),
	}
}

// AddItem registers an item so checkouts against it can succeed.
func (m *MemStore) AddItem(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = struct{}{}
}

// AbortNextTx makes the next transaction fail as if the store had detected a
// serialization conflict.
func (m *MemStore) AbortNextTx() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.abortNextTx = true
}

// DropNextWrite makes the next mutating statement affect zero rows.
func (m *MemStore) DropNextWrite() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropNextWrite = true
}

// ActiveCount reports the number of active checkouts for an item.
func (m *MemStore) ActiveCount(itemID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, co := range m.active {
		if co.ItemID == itemID {
			n++
		}
	}
	return n
}

// ReturnedSnapshot copies the history table.
func (m *MemStore) ReturnedSnapshot() []Checkout {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Checkout, len(m.returned))
	copy(out, m.returned)
	return out
}

// ItemExists implements the catalog collaborator.
func (m *MemStore) ItemExists(_ context.Context, itemID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[itemID]
	return ok, nil
}

func (m *MemStore) InSerializableTx(_ context.Context, fn func(StateTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.abortNextTx {
		m.abortNextTx = false
		return apperr.New(apperr.TransactionFailed, "transaction aborted by a concurrent conflict")
	}

	tx := &memStateTx{store: m}
	if err := fn(tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

func (m *MemStore) ActiveAll(context.Context) ([]Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortAscending(m.activeLocked(func(Checkout) bool { return true })), nil
}

func (m *MemStore) ActiveForUser(_ context.Context, userID uuid.UUID) ([]Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return sortAscending(m.activeLocked(func(co Checkout) bool { return co.CheckedOutBy == userID })), nil
}

func (m *MemStore) ActiveForItem(_ context.Context, itemID uuid.UUID) (*Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, co := range m.active {
		if co.ItemID == itemID {
			c := co
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MemStore) ReturnedForItem(_ context.Context, itemID uuid.UUID) ([]Checkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Checkout
	for _, co := range m.returned {
		if co.ItemID == itemID {
			out = append(out, co)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckedOutAt.After(out[j].CheckedOutAt)
	})
	return out, nil
}

func (m *MemStore) activeLocked(keep func(Checkout) bool) []Checkout {
	var out []Checkout
	for _, co := range m.active {
		if keep(co) {
			out = append(out, co)
		}
	}
	return out
}

func sortAscending(cos []Checkout) []Checkout {
	sort.SliceStable(cos, func(i, j int) bool {
		return cos[i].CheckedOutAt.Before(cos[j].CheckedOutAt)
	})
	return cos
}

// memStateTx stages writes; apply commits them under the store lock already
// held by InSerializableTx.
type memStateTx struct {
	store   *MemStore
	inserts []Checkout
	moves   []Checkout
	deletes []uuid.UUID
}

func (t *memStateTx) consumeDrop() bool {
	if t.store.dropNextWrite {
		t.store.dropNextWrite = false
		return true
	}
	return false
}

func (t *memStateTx) SlotStateForItem(itemID uuid.UUID) (SlotState, error) {
	if _, ok := t.store.items[itemID]; !ok {
		return SlotItemMissing, nil
	}
	for _, co := range t.store.active {
		if co.ItemID == itemID {
			return SlotCheckedOut, nil
		}
	}
	return SlotFree, nil
}

func (t *memStateTx) FindActive(checkoutID, itemID uuid.UUID) (*Checkout, error) {
	co, ok := t.store.active[checkoutID]
	if !ok || co.ItemID != itemID {
		return nil, nil
	}
	c := co
	return &c, nil
}

func (t *memStateTx) InsertActive(co Checkout) (int64, error) {
	if t.consumeDrop() {
		return 0, nil
	}
	t.inserts = append(t.inserts, co)
	return 1, nil
}

func (t *memStateTx) MoveToReturned(checkoutID, itemID uuid.UUID, returnedAt time.Time) (int64, error) {
	if t.consumeDrop() {
		return 0, nil
	}
	co, ok := t.store.active[checkoutID]
	if !ok || co.ItemID != itemID {
		return 0, nil
	}
	moved := co
	moved.ReturnedAt = &returnedAt
	t.moves = append(t.moves, moved)
	return 1, nil
}

func (t *memStateTx) DeleteActive(checkoutID, itemID uuid.UUID) (int64, error) {
	if t.consumeDrop() {
		return 0, nil
	}
	co, ok := t.store.active[checkoutID]
	if !ok || co.ItemID != itemID {
		return 0, nil
	}
	t.deletes = append(t.deletes, checkoutID)
	return 1, nil
}

func (t *memStateTx) apply() {
	for _, co := range t.inserts {
		t.store.active[co.ID] = co
	}
	for _, co := range t.moves {
		t.store.returned = append(t.store.returned, co)
	}
	for _, id := range t.deletes {
		delete(t.store.active, id)
	}
}
