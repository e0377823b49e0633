package circulation

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemdesk/internal/user"
)

func newTestRouter(t *testing.T) (*chi.Mux, *MemStore) {
	t.Helper()
	store := NewMemStore()
	handler := NewHandler(NewService(store, store), slog.New(slog.DiscardHandler))

	r := chi.NewRouter()
	r.Post("/items/{itemID}/checkouts", handler.HandleCheckout)
	r.Put("/items/{itemID}/checkouts/{checkoutID}/returned", handler.HandleReturn)
	r.Get("/items/{itemID}/checkout-history", handler.HandleHistory)
	r.Get("/items/checkouts", handler.HandleListActive)
	return r, store
}

func asUser(req *http.Request, u *user.User) *http.Request {
	return req.WithContext(user.NewContext(req.Context(), u))
}

func TestHandleCheckout(t *testing.T) {
	router, store := newTestRouter(t)
	itemID := uuid.New()
	store.AddItem(itemID)
	alice := &user.User{ID: uuid.New(), Role: user.RoleUser}

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/items/%s/checkouts", itemID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, alice))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), itemID.String())
	assert.Equal(t, 1, store.ActiveCount(itemID))
}

func TestHandleCheckoutConflict(t *testing.T) {
	router, store := newTestRouter(t)
	itemID := uuid.New()
	store.AddItem(itemID)
	alice := &user.User{ID: uuid.New(), Role: user.RoleUser}

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/items/%s/checkouts", itemID), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, asUser(req, alice))
		assert.Equal(t, want, rec.Code, "request %d", i)
	}
}

func TestHandleCheckoutBadItemID(t *testing.T) {
	router, _ := newTestRouter(t)
	alice := &user.User{ID: uuid.New(), Role: user.RoleUser}

	req := httptest.NewRequest(http.MethodPost, "/items/not-a-uuid/checkouts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, alice))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCheckoutUnauthenticated(t *testing.T) {
	router, store := newTestRouter(t)
	itemID := uuid.New()
	store.AddItem(itemID)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/items/%s/checkouts", itemID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleReturnFlow(t *testing.T) {
	router, store := newTestRouter(t)
	itemID := uuid.New()
	store.AddItem(itemID)
	alice := &user.User{ID: uuid.New(), Role: user.RoleUser}
	mallory := &user.User{ID: uuid.New(), Role: user.RoleUser}

	svc := NewService(store, store)
	co := checkoutAt(t, svc, itemID, alice.ID, time.Now().UTC())

	target := fmt.Sprintf("/items/%s/checkouts/%s/returned", itemID, co.ID)

	// Someone else's return is forbidden, the borrower's goes through.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPut, target, nil), mallory))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPut, target, nil), alice))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, store.ActiveCount(itemID))

	// The checkout no longer exists.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(httptest.NewRequest(http.MethodPut, target, nil), alice))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHistory(t *testing.T) {
	router, store := newTestRouter(t)
	itemID := uuid.New()
	store.AddItem(itemID)
	alice := &user.User{ID: uuid.New(), Role: user.RoleUser}

	svc := NewService(store, store)
	co := checkoutAt(t, svc, itemID, alice.ID, time.Now().UTC())
	require.NoError(t, returnAs(svc, co, alice.ID, user.RoleUser, time.Now().UTC()))

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/items/%s/checkout-history", itemID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, alice))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), co.ID.String())

	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/items/%s/checkout-history", uuid.New()), nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asUser(req, alice))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
