package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"carrental-storefront/internal/domain"
	"carrental-storefront/internal/store"
)

// BookingHandler serves the rental lifecycle endpoints.
type BookingHandler struct {
	stores *store.Stores
}

func NewBookingHandler(stores *store.Stores) *BookingHandler {
	return &BookingHandler{stores: stores}
}

// ListBookings returns the authenticated customer's bookings with the
// overdue status projected at read time.
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	bookings := h.stores.Bookings.ByUser(ClaimsFrom(r.Context()).UserID)
	for i := range bookings {
		bookings[i].Status = bookings[i].ProjectStatus(now)
	}
	writeJSON(w, http.StatusOK, bookings)
}

// CreateBooking opens a rental directly, without a prior reservation.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var draft domain.Booking
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	writeJSON(w, http.StatusCreated, h.stores.Bookings.Add(r.Context(), draft))
}

// CompleteBooking finalizes a return, computing any overdue charge and the
// optional damage assessment.
func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Damage *domain.DamageAssessment `json:"damage"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, NewHTTPError(http.StatusBadRequest, "invalid request body"))
			return
		}
	}

	completed, err := h.stores.Bookings.Complete(r.Context(), mux.Vars(r)["id"], req.Damage)
	if err != nil {
		writeError(w, err)
		return
	}
	if completed == nil {
		writeError(w, store.ErrBookingNotFound)
		return
	}
	writeJSON(w, http.StatusOK, completed)
}

// ActiveBookings lists the Ongoing rentals for the staff dashboard.
func (h *BookingHandler) ActiveBookings(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	bookings := h.stores.Bookings.Active()
	for i := range bookings {
		bookings[i].Status = bookings[i].ProjectStatus(now)
	}
	writeJSON(w, http.StatusOK, bookings)
}

// OverdueBookings lists the Ongoing rentals past their end date with the
// accrued hours and fee derived at the current instant.
func (h *BookingHandler) OverdueBookings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stores.Bookings.Overdue(time.Now()))
}
