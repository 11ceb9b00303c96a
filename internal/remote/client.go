package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"carrental-storefront/internal/domain"
	"carrental-storefront/internal/logger"
)

// API is the surface of the upstream rental service this layer consumes.
type API interface {
	ListReservations(ctx context.Context, userID int) ([]domain.Reservation, error)
	CreateReservation(ctx context.Context, userID int, draft *domain.Reservation) (*domain.Reservation, error)
	UpdateReservation(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, reservationID string) error
	UpdateCar(ctx context.Context, car *domain.Car) error
	CreateCar(ctx context.Context, car *domain.Car, images []Image) (*domain.Car, error)
	Authenticate(ctx context.Context, email, password string) (*AuthResponse, error)
	RegisterCustomer(ctx context.Context, reg *CustomerRegistration) error
	GetCustomer(ctx context.Context, customerID int) (*Customer, error)
	UpdateCustomer(ctx context.Context, customer *Customer) error
}

// Image is an uploaded car photo forwarded to the upstream inventory API.
type Image struct {
	FileName    string
	ContentType string
	Data        []byte
}

// AuthResponse is the upstream authentication result.
type AuthResponse struct {
	Token     string `json:"token"`
	UserID    int    `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// CustomerRegistration is the signup payload forwarded upstream.
type CustomerRegistration struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

// Customer is the upstream customer profile.
type Customer struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address,omitempty"`
}

// Client talks to the upstream rental API over HTTP/JSON with bearer auth.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient builds a Client for the given base URL. The token may be empty;
// requests then go out unauthenticated until SetToken is called.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		token:      token,
	}
}

// SetToken replaces the bearer token attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// doJSON issues the request and decodes a 2xx body into out (when out is
// non-nil). Non-2xx responses come back as *APIError.
func (c *Client) doJSON(req *http.Request, out any) error {
	logger.RemoteCall(req.Method, req.URL.Path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.RemoteResult(req.Method+" "+req.URL.Path, err)
		return fmt.Errorf("remote api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Message = body.Message
		}
		logger.RemoteResult(req.Method+" "+req.URL.Path, apiErr)
		return apiErr
	}

	logger.RemoteResult(req.Method+" "+req.URL.Path, nil)
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("remote api: decoding response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) putJSON(ctx context.Context, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.doJSON(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.doJSON(req, out)
}

// ListReservations fetches the authoritative reservation list for a customer.
func (c *Client) ListReservations(ctx context.Context, userID int) ([]domain.Reservation, error) {
	var reservations []domain.Reservation
	path := fmt.Sprintf("/api/customer/reservations/%d", userID)
	if err := c.getJSON(ctx, path, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// CreateReservation posts a reservation draft and returns the server-assigned
// representation.
func (c *Client) CreateReservation(ctx context.Context, userID int, draft *domain.Reservation) (*domain.Reservation, error) {
	var created domain.Reservation
	path := fmt.Sprintf("/api/customer/%d/reservations", userID)
	if err := c.postJSON(ctx, path, draft, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateReservation replaces the reservation upstream and returns the server
// representation.
func (c *Client) UpdateReservation(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	var updated domain.Reservation
	path := fmt.Sprintf("/api/reservations/%s", res.ID)
	if err := c.putJSON(ctx, path, res, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// CancelReservation issues the cancel action upstream.
func (c *Client) CancelReservation(ctx context.Context, reservationID string) error {
	path := fmt.Sprintf("/api/customer/reservation/%s/cancel", reservationID)
	return c.putJSON(ctx, path, nil, nil)
}

// carPayload is the admin car-edit wire shape: the car fields plus the
// availability mapped onto the upstream status value.
type carPayload struct {
	domain.Car
	Status domain.CarStatus `json:"status"`
}

// UpdateCar pushes the full car payload upstream, carrying availability as
// status Available/Booked.
func (c *Client) UpdateCar(ctx context.Context, car *domain.Car) error {
	payload := carPayload{Car: *car, Status: car.WireStatus()}
	path := fmt.Sprintf("/api/admin/cars/%s/edit", car.ID)
	return c.putJSON(ctx, path, payload, nil)
}

// CreateCar registers a car upstream as multipart form data: a carJson field
// plus the image files.
func (c *Client) CreateCar(ctx context.Context, car *domain.Car, images []Image) (*domain.Car, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	carJSON, err := json.Marshal(carPayload{Car: *car, Status: car.WireStatus()})
	if err != nil {
		return nil, err
	}
	if err := writer.WriteField("carJson", string(carJSON)); err != nil {
		return nil, err
	}
	for _, img := range images {
		part, err := writer.CreateFormFile("images", img.FileName)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(img.Data); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/admin/cars", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var created domain.Car
	if err := c.doJSON(req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Authenticate exchanges credentials for an upstream bearer token.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var auth AuthResponse
	if err := c.postJSON(ctx, "/api/auth/authenticate", body, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

// RegisterCustomer forwards a signup request upstream.
func (c *Client) RegisterCustomer(ctx context.Context, reg *CustomerRegistration) error {
	return c.postJSON(ctx, "/api/auth/customer/register", reg, nil)
}

// GetCustomer fetches a customer profile.
func (c *Client) GetCustomer(ctx context.Context, customerID int) (*Customer, error) {
	var customer Customer
	path := fmt.Sprintf("/api/customer/%d", customerID)
	if err := c.getJSON(ctx, path, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateCustomer replaces a customer profile upstream.
func (c *Client) UpdateCustomer(ctx context.Context, customer *Customer) error {
	path := fmt.Sprintf("/api/customer/%d", customer.ID)
	return c.putJSON(ctx, path, customer, nil)
}
