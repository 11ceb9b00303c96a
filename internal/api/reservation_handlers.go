package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"carrental-storefront/internal/domain"
	"carrental-storefront/internal/store"
)

// ReservationHandler serves the customer reservation lifecycle.
type ReservationHandler struct {
	stores *store.Stores
}

func NewReservationHandler(stores *store.Stores) *ReservationHandler {
	return &ReservationHandler{stores: stores}
}

// ListReservations refreshes the authenticated customer's reservations from
// the upstream API, falling back to the cached snapshot when it is down.
func (h *ReservationHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	reservations := h.stores.Reservations.FetchForUser(r.Context(), claims.UserID)
	writeJSON(w, http.StatusOK, reservations)
}

// CreateReservation places a reservation for the authenticated customer.
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var draft domain.Reservation
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	draft.UserID = ClaimsFrom(r.Context()).UserID

	created, err := h.stores.Reservations.Add(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateReservation replaces the reservation upstream and locally. Status
// changes must follow the reservation state machine.
func (h *ReservationHandler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	var res domain.Reservation
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		writeError(w, NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	res.ID = mux.Vars(r)["id"]

	updated, err := h.stores.Reservations.Update(r.Context(), res)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// CancelReservation cancels upstream then locally. Cancelling an unknown or
// already-terminal reservation is a no-op, not an error.
func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	cancelled, err := h.stores.Reservations.Cancel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cancelled": cancelled})
}

// ConvertReservation flips an approved reservation to Converted and opens
// the rental with the returned booking draft.
func (h *ReservationHandler) ConvertReservation(w http.ResponseWriter, r *http.Request) {
	draft, err := h.stores.Reservations.ConvertToBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	if draft == nil {
		writeError(w, store.ErrReservationNotFound)
		return
	}

	booking := h.stores.Bookings.Add(r.Context(), *draft)
	writeJSON(w, http.StatusCreated, booking)
}

// ActiveReservations lists the reservations a staff dashboard treats as
// live.
func (h *ReservationHandler) ActiveReservations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stores.Reservations.Active())
}

// RecentActivity maps the customer's reservations to dashboard events.
func (h *ReservationHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	writeJSON(w, http.StatusOK, h.stores.Reservations.RecentActivity(claims.UserID))
}
