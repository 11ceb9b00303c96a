package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"carrental-storefront/internal/remote"
	"carrental-storefront/internal/security"
)

// AuthHandler proxies authentication to the upstream API and issues the
// storefront's own session tokens.
type AuthHandler struct {
	remote remote.API
	tokens security.TokenManager
}

func NewAuthHandler(remoteAPI remote.API, tokens security.TokenManager) *AuthHandler {
	return &AuthHandler{remote: remoteAPI, tokens: tokens}
}

// Login authenticates against the upstream API, keeps its bearer token for
// subsequent upstream calls and returns a storefront session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}

	resp, err := h.remote.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if setter, ok := h.remote.(interface{ SetToken(string) }); ok {
		setter.SetToken(resp.Token)
	}

	var roles []string
	if role := strings.ToLower(resp.Role); role != "" {
		roles = append(roles, role)
	}
	session, err := h.tokens.GenerateAccessToken(resp.UserID, req.Email, roles)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":     session,
		"userId":    resp.UserID,
		"firstName": resp.FirstName,
		"lastName":  resp.LastName,
		"role":      resp.Role,
	})
}

// Register forwards a customer signup to the upstream API.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req remote.CustomerRegistration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	if err := h.remote.RegisterCustomer(r.Context(), &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Registration successful"})
}

// Profile returns the authenticated customer's upstream profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	customer, err := h.remote.GetCustomer(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// UpdateProfile forwards profile changes to the upstream API.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req remote.Customer
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, NewHTTPError(http.StatusBadRequest, "invalid request body"))
		return
	}
	req.ID = ClaimsFrom(r.Context()).UserID

	if err := h.remote.UpdateCustomer(r.Context(), &req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
}
