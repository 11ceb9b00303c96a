package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"carrental-storefront/internal/store"
)

// NotificationHandler serves the back-office notification feed.
type NotificationHandler struct {
	stores *store.Stores
}

func NewNotificationHandler(stores *store.Stores) *NotificationHandler {
	return &NotificationHandler{stores: stores}
}

// ListNotifications returns the feed, newest first.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stores.Notifications.List())
}

// UnreadCount returns the number of unread notifications.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"unread": h.stores.Notifications.UnreadCount()})
}

// MarkRead flags a single notification as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if !h.stores.Notifications.MarkRead(r.Context(), mux.Vars(r)["id"]) {
		writeError(w, NewHTTPError(http.StatusNotFound, "notification not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification marked read"})
}

// MarkAllRead flags the whole feed as read.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	h.stores.Notifications.MarkAllRead(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"message": "All notifications marked read"})
}

// DeleteNotification removes a notification from the feed.
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	if !h.stores.Notifications.Remove(r.Context(), mux.Vars(r)["id"]) {
		writeError(w, NewHTTPError(http.StatusNotFound, "notification not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}
