package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"carrental-storefront/internal/remote"
	"carrental-storefront/internal/security"
	"carrental-storefront/internal/store"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Stores          *store.Stores
	Remote          remote.API
	Tokens          security.TokenManager
	SecurityDeposit int
}

// NewRouter builds the storefront HTTP API.
func NewRouter(deps RouterDeps) *mux.Router {
	cars := NewCarHandler(deps.Stores, deps.Remote, deps.SecurityDeposit)
	reservations := NewReservationHandler(deps.Stores)
	bookings := NewBookingHandler(deps.Stores)
	notifications := NewNotificationHandler(deps.Stores)
	auth := NewAuthHandler(deps.Remote, deps.Tokens)

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Public endpoints
	r.HandleFunc("/api/auth/login", auth.Login).Methods("POST")
	r.HandleFunc("/api/auth/register", auth.Register).Methods("POST")
	r.HandleFunc("/api/cars", cars.ListCars).Methods("GET")
	r.HandleFunc("/api/cars/{id}", cars.GetCar).Methods("GET")
	r.HandleFunc("/api/cars/{id}/quote", cars.QuoteCar).Methods("GET")

	// Customer endpoints (authenticated)
	customer := r.PathPrefix("/api").Subrouter()
	customer.Use(AuthMiddleware(deps.Tokens))
	customer.HandleFunc("/profile", auth.Profile).Methods("GET")
	customer.HandleFunc("/profile", auth.UpdateProfile).Methods("PUT")
	customer.HandleFunc("/reservations", reservations.ListReservations).Methods("GET")
	customer.HandleFunc("/reservations", reservations.CreateReservation).Methods("POST")
	customer.HandleFunc("/reservations/{id}", reservations.UpdateReservation).Methods("PUT")
	customer.HandleFunc("/reservations/{id}/cancel", reservations.CancelReservation).Methods("POST")
	customer.HandleFunc("/bookings", bookings.ListBookings).Methods("GET")
	customer.HandleFunc("/activity", reservations.RecentActivity).Methods("GET")

	// Back-office endpoints (staff role required)
	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.Use(AuthMiddleware(deps.Tokens), StaffOnly)
	admin.HandleFunc("/cars", cars.AddCar).Methods("POST")
	admin.HandleFunc("/cars/{id}", cars.UpdateCar).Methods("PUT")
	admin.HandleFunc("/cars/{id}", cars.DeleteCar).Methods("DELETE")
	admin.HandleFunc("/cars/{id}/archive", cars.ArchiveCar).Methods("POST")
	admin.HandleFunc("/cars/{id}/availability", cars.SetAvailability).Methods("PUT")
	admin.HandleFunc("/cars/{id}/history", cars.CarHistory).Methods("GET")
	admin.HandleFunc("/reservations", reservations.ActiveReservations).Methods("GET")
	admin.HandleFunc("/reservations/{id}/convert", reservations.ConvertReservation).Methods("POST")
	admin.HandleFunc("/bookings", bookings.ActiveBookings).Methods("GET")
	admin.HandleFunc("/bookings", bookings.CreateBooking).Methods("POST")
	admin.HandleFunc("/bookings/{id}/complete", bookings.CompleteBooking).Methods("POST")
	admin.HandleFunc("/bookings/overdue", bookings.OverdueBookings).Methods("GET")
	admin.HandleFunc("/notifications", notifications.ListNotifications).Methods("GET")
	admin.HandleFunc("/notifications/unread-count", notifications.UnreadCount).Methods("GET")
	admin.HandleFunc("/notifications/read-all", notifications.MarkAllRead).Methods("POST")
	admin.HandleFunc("/notifications/{id}/read", notifications.MarkRead).Methods("POST")
	admin.HandleFunc("/notifications/{id}", notifications.DeleteNotification).Methods("DELETE")

	return r
}
