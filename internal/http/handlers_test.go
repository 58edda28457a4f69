package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

// Requests rejected before any storage access need no wired dependencies.
func newBareHandlers() *Handlers {
	return &Handlers{}
}

func withUser(r *http.Request, userID int64) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCreateBookingRequiresIdentity(t *testing.T) {
	h := newBareHandlers()
	req := httptest.NewRequest("POST", "/v1/bookings", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.CreateBooking(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestListBookingsRequiresIdentity(t *testing.T) {
	h := newBareHandlers()
	req := httptest.NewRequest("GET", "/v1/bookings", nil)
	rec := httptest.NewRecorder()

	h.ListBookings(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestCancelBookingRejectsBadID(t *testing.T) {
	h := newBareHandlers()
	req := httptest.NewRequest("DELETE", "/v1/bookings/abc", nil)
	req = withUser(req, 1)
	req = withURLParam(req, "id", "abc")
	rec := httptest.NewRecorder()

	h.CancelBooking(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListPackagesRejectsBadRestaurantID(t *testing.T) {
	h := newBareHandlers()
	req := httptest.NewRequest("GET", "/v1/restaurants/xyz/packages", nil)
	req = withURLParam(req, "id", "xyz")
	rec := httptest.NewRecorder()

	h.ListPackages(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestIdentityMiddlewareParsesHeader(t *testing.T) {
	var got int64
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = userIDFrom(r.Context())
	})

	req := httptest.NewRequest("GET", "/v1/bookings", nil)
	req.Header.Set("X-User-ID", "42")
	IdentityMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)
	if !ok || got != 42 {
		t.Errorf("expected user 42, got %d (ok=%v)", got, ok)
	}

	ok = false
	req = httptest.NewRequest("GET", "/v1/bookings", nil)
	IdentityMiddleware(next).ServeHTTP(httptest.NewRecorder(), req)
	if ok {
		t.Error("missing header must not produce an identity")
	}
}

func TestIdempotencyMiddlewareRequiresKey(t *testing.T) {
	handler := IdempotencyMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/v1/bookings", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST without key: expected 400, got %d", rec.Code)
	}

	req = httptest.NewRequest("POST", "/v1/bookings", nil)
	req.Header.Set("Idempotency-Key", "short")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST with short key: expected 400, got %d", rec.Code)
	}

	req = httptest.NewRequest("GET", "/v1/bookings", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET without key: expected 200, got %d", rec.Code)
	}
}
