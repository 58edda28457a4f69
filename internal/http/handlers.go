package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/saveabite/reservations/internal/adapters/crdb"
	redisadapter "github.com/saveabite/reservations/internal/adapters/redis"
	"github.com/saveabite/reservations/internal/config"
	"github.com/saveabite/reservations/internal/domain"
	"github.com/saveabite/reservations/internal/idempotency"
	"github.com/saveabite/reservations/internal/observability"
	"github.com/saveabite/reservations/internal/reservation"
)

type Handlers struct {
	cfg     *config.Config
	svc     *reservation.Service
	catalog *crdb.Repository
	cache   *redisadapter.Cache
	idemp   *idempotency.Idempotency
}

func NewHandlers(cfg *config.Config, svc *reservation.Service, catalog *crdb.Repository, cache *redisadapter.Cache, idemp *idempotency.Idempotency) *Handlers {
	return &Handlers{
		cfg:     cfg,
		svc:     svc,
		catalog: catalog,
		cache:   cache,
		idemp:   idemp,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) []byte {
	data, _ := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
	return data
}

// ListRestaurants serves the restaurant catalog, cached in Redis.
func (h *Handlers) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	var restaurants []domain.Restaurant
	hit, err := h.cache.GetJSON(r.Context(), "restaurants", &restaurants)
	if err == nil && hit {
		observability.CacheHits.WithLabelValues("hit").Inc()
		writeJSON(w, http.StatusOK, restaurants)
		return
	}
	observability.CacheHits.WithLabelValues("miss").Inc()

	restaurants, err = h.catalog.ListRestaurants(r.Context())
	if err != nil {
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	h.cache.SetJSON(r.Context(), "restaurants", restaurants, h.cfg.CatalogTTL)
	writeJSON(w, http.StatusOK, restaurants)
}

type packageResponse struct {
	ID             int64                `json:"id"`
	RestaurantID   int64                `json:"restaurant_id"`
	RestaurantName string               `json:"restaurant_name"`
	Surprise       bool                 `json:"surprise"`
	Content        []domain.ContentLine `json:"content"`
	Price          float64              `json:"price"`
	Size           string               `json:"size"`
	StartTime      string               `json:"start_time"`
	EndTime        string               `json:"end_time"`
	Available      bool                 `json:"available"`
}

// ListPackages serves the packages of one restaurant with live availability.
func (h *Handlers) ListPackages(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid restaurant id", http.StatusBadRequest)
		return
	}

	packages, err := h.catalog.ListPackagesByRestaurant(r.Context(), restaurantID)
	if err != nil {
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	resp := make([]packageResponse, len(packages))
	for i, p := range packages {
		resp[i] = packageResponse{
			ID:             p.ID,
			RestaurantID:   p.RestaurantID,
			RestaurantName: p.RestaurantName,
			Surprise:       p.Surprise,
			Content:        p.Content,
			Price:          p.Price,
			Size:           p.Size,
			StartTime:      p.StartTime.Format(timeLayout),
			EndTime:        p.EndTime.Format(timeLayout),
			Available:      p.Available,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type createBookingRequest struct {
	PackageIDs       []int64                `json:"package_ids"`
	ContentSnapshots [][]domain.ContentLine `json:"content_snapshots"`
}

// CreateBooking maps the coordinator to HTTP. An unavailable set is a
// client-correctable 409 carrying the ids to prune, not a failure.
func (h *Handlers) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	key := r.Header.Get("Idempotency-Key")
	existing, err := h.idemp.Get(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if existing != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(existing.Status)
		w.Write(existing.Result)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bookingID, err := h.svc.CreateBooking(r.Context(), userID, req.PackageIDs, req.ContentSnapshots)
	if unavailable, ok := domain.UnavailableIDs(err); ok {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":       "some packages are no longer available",
			"unavailable": unavailable,
		})
		return
	}
	if errors.Is(err, domain.ErrSerializationFailure) || errors.Is(err, domain.ErrConflict) {
		http.Error(w, "conflict, try again", http.StatusConflict)
		return
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		http.Error(w, errors.FlattenDetails(err), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	data := writeJSON(w, http.StatusCreated, map[string]interface{}{"booking_id": bookingID})
	h.idemp.Set(r.Context(), key, idempotency.Response{Status: http.StatusCreated, Result: data})
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

type bookedPackageResponse struct {
	ID             int64                `json:"id"`
	RestaurantName string               `json:"restaurant_name"`
	Surprise       bool                 `json:"surprise"`
	Content        []domain.ContentLine `json:"content"`
	Price          float64              `json:"price"`
	Size           string               `json:"size"`
	StartTime      string               `json:"start_time"`
	EndTime        string               `json:"end_time"`
}

type bookingResponse struct {
	ID         int64                   `json:"id"`
	UserID     int64                   `json:"user_id"`
	PackageIDs []int64                 `json:"package_ids"`
	Packages   []bookedPackageResponse `json:"packages"`
}

// ListBookings returns the caller's bookings, oldest first, packages in
// submission order with their booking-time content snapshots.
func (h *Handlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	bookings, err := h.svc.ListBookings(r.Context(), userID)
	if err != nil {
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}

	resp := make([]bookingResponse, len(bookings))
	for i, b := range bookings {
		packages := make([]bookedPackageResponse, len(b.Packages))
		for j, p := range b.Packages {
			packages[j] = bookedPackageResponse{
				ID:             p.PackageID,
				RestaurantName: p.RestaurantName,
				Surprise:       p.Surprise,
				Content:        p.Snapshot,
				Price:          p.Price,
				Size:           p.Size,
				StartTime:      p.StartTime.Format(timeLayout),
				EndTime:        p.EndTime.Format(timeLayout),
			}
		}
		resp[i] = bookingResponse{ID: b.ID, UserID: b.UserID, PackageIDs: b.PackageIDs(), Packages: packages}
	}
	writeJSON(w, http.StatusOK, resp)
}

// CancelBooking returns the number of bookings removed, 404 when the booking
// does not exist for the caller.
func (h *Handlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	bookingID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}

	removed, err := h.svc.CancelBooking(r.Context(), bookingID, userID)
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"removed": 0})
		return
	}
	if errors.Is(err, domain.ErrSerializationFailure) {
		http.Error(w, "conflict, try again", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "storage error", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
