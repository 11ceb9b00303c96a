package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carrental-storefront/internal/cache"
	"carrental-storefront/internal/domain"
	"carrental-storefront/internal/remote"
	"carrental-storefront/internal/security"
	"carrental-storefront/internal/service"
	"carrental-storefront/internal/store"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoAPI is an upstream fake that acknowledges everything.
type echoAPI struct{}

func (echoAPI) ListReservations(context.Context, int) ([]domain.Reservation, error) {
	return nil, nil
}

func (echoAPI) CreateReservation(_ context.Context, _ int, draft *domain.Reservation) (*domain.Reservation, error) {
	created := *draft
	created.ID = "SRV-" + draft.ID
	return &created, nil
}

func (echoAPI) UpdateReservation(_ context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	updated := *res
	return &updated, nil
}

func (echoAPI) CancelReservation(context.Context, string) error { return nil }

func (echoAPI) UpdateCar(context.Context, *domain.Car) error { return nil }

func (echoAPI) CreateCar(_ context.Context, car *domain.Car, _ []remote.Image) (*domain.Car, error) {
	created := *car
	created.ID = "SRV-CAR-1"
	return &created, nil
}

func (echoAPI) Authenticate(_ context.Context, email, _ string) (*remote.AuthResponse, error) {
	return &remote.AuthResponse{Token: "upstream-token", UserID: 42, FirstName: "Amal", Role: "CUSTOMER"}, nil
}

func (echoAPI) RegisterCustomer(context.Context, *remote.CustomerRegistration) error { return nil }

func (echoAPI) GetCustomer(_ context.Context, id int) (*remote.Customer, error) {
	return &remote.Customer{ID: id, FirstName: "Amal"}, nil
}

func (echoAPI) UpdateCustomer(context.Context, *remote.Customer) error { return nil }

type testEnv struct {
	router *mux.Router
	stores *store.Stores
	tokens security.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	snaps := cache.NewMemorySnapshots()
	api := echoAPI{}

	syncer := store.NewAvailabilitySyncer(api, 3, time.Millisecond)
	notifications := store.NewNotificationStore(ctx, snaps)
	cars := store.NewCarStore(ctx, snaps, syncer)
	bookings := store.NewBookingStore(ctx, snaps, cars, notifications, service.NewNoopMailer(), 0)
	reservations := store.NewReservationStore(ctx, snaps, api, cars, notifications, service.NewNoopMailer(), 48*time.Hour)
	cars.SetReferenceChecks(reservations.IsCarReserved, bookings.HasActiveForCar)
	reservations.SetCarInUseCheck(bookings.HasActiveForCar)

	stores := &store.Stores{
		Cars:          cars,
		Reservations:  reservations,
		Bookings:      bookings,
		Notifications: notifications,
		Syncer:        syncer,
	}
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", 60)
	router := NewRouter(RouterDeps{
		Stores:          stores,
		Remote:          api,
		Tokens:          tokens,
		SecurityDeposit: 5000,
	})
	return &testEnv{router: router, stores: stores, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) customerToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.GenerateAccessToken(42, "amal@example.com", []string{"customer"})
	require.NoError(t, err)
	return token
}

func (e *testEnv) staffToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.GenerateAccessToken(7, "staff@example.com", []string{"admin"})
	require.NoError(t, err)
	return token
}

func TestListCarsIsPublic(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/cars", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cars []domain.Car
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cars))
	assert.Len(t, cars, 3)
}

func TestQuoteCar(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/cars/C001/quote?startDate=2025-05-01&endDate=2025-05-08", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var quote struct {
		Days            int `json:"days"`
		RentalCost      int `json:"rentalCost"`
		SecurityDeposit int `json:"securityDeposit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 7, quote.Days)
	assert.Equal(t, 31500, quote.RentalCost)
	assert.Equal(t, 5000, quote.SecurityDeposit)

	t.Run("Bad window is a 400", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/cars/C001/quote?startDate=2025-05-08&endDate=2025-05-01", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown car is a 404", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/cars/nope/quote?startDate=2025-05-01&endDate=2025-05-08", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestReservationEndpointsRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/reservations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/reservations", env.customerToken(t), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminEndpointsRequireStaffRole(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/admin/notifications", env.customerToken(t), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/notifications", env.staffToken(t), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndCancelReservation(t *testing.T) {
	env := newTestEnv(t)
	token := env.customerToken(t)

	rec := env.do(t, http.MethodPost, "/api/reservations", token, domain.Reservation{
		CarID:      "C001",
		FirstName:  "Amal",
		LastName:   "Fernando",
		StartDate:  "2025-05-01",
		EndDate:    "2025-05-08",
		TotalPrice: 31500,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 42, created.UserID)
	assert.Equal(t, domain.ReservationStatusWaiting, created.Status)

	car := env.stores.Cars.GetByID("C001")
	require.NotNil(t, car)
	assert.False(t, car.Available)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/reservations/%s/cancel", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cancelled":true`)

	// Cancelling again is a no-op, still a 200.
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/reservations/%s/cancel", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"cancelled":false`)
}

func TestDeleteCarConflictsWhileReferenced(t *testing.T) {
	env := newTestEnv(t)
	customer := env.customerToken(t)
	staff := env.staffToken(t)

	rec := env.do(t, http.MethodPost, "/api/reservations", customer, domain.Reservation{
		CarID:     "C001",
		StartDate: "2025-05-01",
		EndDate:   "2025-05-08",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/cars/C001", staff, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/cars/C003", staff, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConvertReservationOpensBooking(t *testing.T) {
	env := newTestEnv(t)
	customer := env.customerToken(t)
	staff := env.staffToken(t)

	rec := env.do(t, http.MethodPost, "/api/reservations", customer, domain.Reservation{
		CarID:      "C002",
		FirstName:  "Amal",
		LastName:   "Fernando",
		StartDate:  "2025-05-01",
		EndDate:    "2025-05-08",
		TotalPrice: 35000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Reservation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	approve := created
	approve.Status = domain.ReservationStatusActive
	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/reservations/%s", created.ID), customer, approve)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/reservations/%s/convert", created.ID), staff, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var booking domain.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))
	assert.Equal(t, created.ID, booking.ReservationID)
	assert.Equal(t, domain.BookingStatusOngoing, booking.Status)

	// A second conversion conflicts.
	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/admin/reservations/%s/convert", created.ID), staff, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCarHistory(t *testing.T) {
	env := newTestEnv(t)
	staff := env.staffToken(t)

	rec := env.do(t, http.MethodPost, "/api/reservations", env.customerToken(t), domain.Reservation{
		CarID:     "C001",
		StartDate: "2025-05-01",
		EndDate:   "2025-05-08",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/cars/C001/history", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		Reservations []domain.Reservation `json:"reservations"`
		Bookings     []domain.Booking     `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Len(t, history.Reservations, 1)
	assert.Empty(t, history.Bookings)

	rec = env.do(t, http.MethodGet, "/api/admin/cars/nope/history", staff, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	staff := env.staffToken(t)

	rec := env.do(t, http.MethodGet, "/api/admin/notifications/unread-count", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unread":0`)

	// A reservation produces an unread notification.
	rec = env.do(t, http.MethodPost, "/api/reservations", env.customerToken(t), domain.Reservation{
		CarID:     "C001",
		StartDate: "2025-05-01",
		EndDate:   "2025-05-08",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/notifications/unread-count", staff, nil)
	assert.Contains(t, rec.Body.String(), `"unread":1`)

	rec = env.do(t, http.MethodPost, "/api/admin/notifications/read-all", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/admin/notifications/unread-count", staff, nil)
	assert.Contains(t, rec.Body.String(), `"unread":0`)

	rec = env.do(t, http.MethodPost, "/api/admin/notifications/missing/read", staff, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginIssuesSessionToken(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "amal@example.com",
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token  string `json:"token"`
		UserID int    `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.UserID)

	claims, err := env.tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.False(t, claims.IsStaff())
}
