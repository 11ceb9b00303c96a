package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusWaiting             ReservationStatus = "Waiting for Approval"
	ReservationStatusActive              ReservationStatus = "Active"
	ReservationStatusPendingConfirmation ReservationStatus = "Pending Confirmation"
	ReservationStatusConverted           ReservationStatus = "Converted to Booking"
	ReservationStatusCancelled           ReservationStatus = "Cancelled"
	ReservationStatusExpired             ReservationStatus = "Expired"
)

// IsTerminal reports whether no further status transition is permitted.
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case ReservationStatusConverted, ReservationStatusCancelled, ReservationStatusExpired:
		return true
	}
	return false
}

// HoldsCar reports whether a reservation in this status keeps the car off
// the available inventory.
func (s ReservationStatus) HoldsCar() bool {
	switch s {
	case ReservationStatusWaiting, ReservationStatusActive, ReservationStatusPendingConfirmation:
		return true
	}
	return false
}

// CanTransition reports whether the reservation state machine permits
// moving from s to next. Terminal statuses permit nothing.
func (s ReservationStatus) CanTransition(next ReservationStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case ReservationStatusWaiting:
		return next == ReservationStatusActive ||
			next == ReservationStatusCancelled ||
			next == ReservationStatusExpired
	case ReservationStatusActive, ReservationStatusPendingConfirmation:
		return next == ReservationStatusConverted ||
			next == ReservationStatusCancelled ||
			next == ReservationStatusExpired
	}
	return false
}

type Reservation struct {
	ID              string            `json:"id"`
	CarID           string            `json:"carId"`
	UserID          int               `json:"userId"`
	FirstName       string            `json:"firstName"`
	LastName        string            `json:"lastName"`
	CarName         string            `json:"carName,omitempty"`
	StartDate       string            `json:"startDate"` // yyyy-mm-dd
	EndDate         string            `json:"endDate"`   // yyyy-mm-dd
	TotalPrice      int               `json:"totalPrice"`
	Status          ReservationStatus `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	HasLicenseFile  bool              `json:"hasLicenseFile,omitempty"`
	HasContractFile bool              `json:"hasContractFile,omitempty"`
}

// RecentActivity is the flattened view of a reservation event a customer
// dashboard renders.
type RecentActivity struct {
	Action    string            `json:"action"` // "created" or "cancelled"
	CarName   string            `json:"carName"`
	Timestamp time.Time         `json:"timestamp"`
	Status    ReservationStatus `json:"status"`
}
