package domain

import "time"

type NotificationType string

const (
	NotificationTypeReservation  NotificationType = "reservation"
	NotificationTypeReturn       NotificationType = "return"
	NotificationTypeBooking      NotificationType = "booking"
	NotificationTypeCancellation NotificationType = "cancellation"
	NotificationTypeCarReturn    NotificationType = "car-return"
	NotificationTypeExpiry       NotificationType = "expiry"
)

type Notification struct {
	ID        string            `json:"id"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Read      bool              `json:"read"`
	Data      map[string]string `json:"data,omitempty"`
}
