package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"carrental-storefront/internal/domain"
	"carrental-storefront/internal/remote"
	"carrental-storefront/internal/store"
	"carrental-storefront/internal/utils"
)

// CarHandler serves the rentable inventory and the back-office car
// management endpoints.
type CarHandler struct {
	stores  *store.Stores
	remote  remote.API
	deposit int
}

func NewCarHandler(stores *store.Stores, remoteAPI remote.API, deposit int) *CarHandler {
	return &CarHandler{stores: stores, remote: remoteAPI, deposit: deposit}
}

type carView struct {
	domain.Car
	PendingSync bool `json:"pendingSync,omitempty"`
}

func (h *CarHandler) view(car domain.Car) carView {
	return carView{Car: car, PendingSync: h.stores.Cars.PendingSync(car.ID)}
}

// ListCars returns the non-archived inventory.
func (h *CarHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	var out []carView
	for _, car := range h.stores.Cars.List() {
		if car.Archived {
			continue
		}
		out = append(out, h.view(car))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCar returns a single car by id.
func (h *CarHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	car := h.stores.Cars.GetByID(mux.Vars(r)["id"])
	if car == nil {
		writeError(w, store.ErrCarNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.view(*car))
}

// QuoteCar prices a rental window for a car. The security deposit is quoted
// alongside the rental cost, never added to it.
func (h *CarHandler) QuoteCar(w http.ResponseWriter, r *http.Request) {
	car := h.stores.Cars.GetByID(mux.Vars(r)["id"])
	if car == nil {
		writeError(w, store.ErrCarNotFound)
		return
	}

	start := r.URL.Query().Get("startDate")
	end := r.URL.Query().Get("endDate")
	quote, err := utils.QuoteRental(car.PricePerDay, start, end, h.deposit)
	if err != nil {
		writeError(w, NewHTTPError(http.StatusBadRequest, err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// AddCar creates a car upstream from a multipart form (carJson plus image
// files) and adopts the server representation into the local inventory.
func (h *CarHandler) AddCar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, NewHTTPError(http.StatusBadRequest, "invalid multipart form"))
		return
	}

	var draft domain.Car
	if err := json.Unmarshal([]byte(r.FormValue("carJson")), &draft); err != nil {
		writeError(w, NewHTTPError(http.StatusBadRequest, "invalid carJson payload"))
		return
	}

	var images []remote.Image
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				writeError(w, NewHTTPError(http.StatusBadRequest, "unreadable image upload"))
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				writeError(w, NewHTTPError(http.StatusBadRequest, "unreadable image upload"))
				return
			}
			images = append(images, remote.Image{
				FileName:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	created, err := h.remote.CreateCar(r.Context(), &draft, images)
	if err != nil {
		writeError(w, err)
		return
	}
	adopted := h.stores.Cars.Adopt(r.Context(), *created)
	writeJSON(w, http.StatusCreated, h.view(adopted))
}

// UpdateCar replaces the car by id in the local inventory.
func (h *CarHandler) UpdateCar(w http.ResponseWriter, r *http.Request) {
	var car domain.Car
	if err := json.NewDecoder(r.Body).Decode(&car); err != nil {
		writeError(w, NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	car.ID = mux.Vars(r)["id"]

	updated, err := h.stores.Cars.Update(r.Context(), car)
	if err != nil {
		writeError(w, err)
		return
	}
	h.stores.Syncer.Enqueue(*updated)
	writeJSON(w, http.StatusOK, h.view(*updated))
}

// DeleteCar hard-deletes a car. Rejected while a reservation or booking
// still references it.
func (h *CarHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Cars.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Car deleted"})
}

// ArchiveCar soft-deletes a car, keeping it for booking history.
func (h *CarHandler) ArchiveCar(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Cars.Archive(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Car archived"})
}

// CarHistory returns every reservation and booking that ever referenced
// the car, for the back-office detail view.
func (h *CarHandler) CarHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if h.stores.Cars.GetByID(id) == nil {
		writeError(w, store.ErrCarNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reservations": h.stores.Reservations.ByCar(id),
		"bookings":     h.stores.Bookings.ByCar(id),
	})
}

// SetAvailability flips a car's availability locally and queues the
// upstream write.
func (h *CarHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Available bool `json:"available"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.stores.Cars.SetAvailability(r.Context(), id, req.Available); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"available":   req.Available,
		"pendingSync": h.stores.Cars.PendingSync(id),
	})
}
