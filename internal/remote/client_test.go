package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"carrental-storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListReservations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/customer/reservations/42", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]domain.Reservation{
			{ID: "R001", CarID: "C001", UserID: 42, Status: domain.ReservationStatusWaiting},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-1", 5*time.Second)
	reservations, err := client.ListReservations(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, "R001", reservations[0].ID)
}

func TestClient_CreateReservation_ReturnsServerRepresentation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/customer/42/reservations", r.URL.Path)

		var draft domain.Reservation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
		// The server assigns its own id and echoes the rest back.
		draft.ID = "SRV-77"
		json.NewEncoder(w).Encode(draft)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	created, err := client.CreateReservation(context.Background(), 42, &domain.Reservation{
		ID:    "local-id",
		CarID: "C001",
	})
	require.NoError(t, err)
	assert.Equal(t, "SRV-77", created.ID)
	assert.Equal(t, "C001", created.CarID)
}

func TestClient_UpdateCar_MapsAvailabilityToStatus(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/admin/cars/C001/edit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	err := client.UpdateCar(context.Background(), &domain.Car{ID: "C001", Available: false})
	require.NoError(t, err)
	assert.Equal(t, "Booked", got["status"])
}

func TestClient_CancelReservation_SurfacesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"message": "reservation already finalized"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	err := client.CancelReservation(context.Background(), "R001")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "reservation already finalized", apiErr.Message)
}

func TestClient_CreateCar_Multipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		carJSON := r.FormValue("carJson")
		assert.Contains(t, carJSON, `"Available"`)

		files := r.MultipartForm.File["images"]
		require.Len(t, files, 1)
		assert.Equal(t, "front.jpg", files[0].Filename)

		var car domain.Car
		require.NoError(t, json.Unmarshal([]byte(carJSON), &car))
		car.ID = "SRV-C9"
		json.NewEncoder(w).Encode(car)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 5*time.Second)
	created, err := client.CreateCar(context.Background(), &domain.Car{Name: "Honda Fit", Available: true}, []Image{
		{FileName: "front.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")},
	})
	require.NoError(t, err)
	assert.Equal(t, "SRV-C9", created.ID)
}
