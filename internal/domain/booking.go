package domain

import "time"

type BookingStatus string

const (
	BookingStatusOngoing   BookingStatus = "Ongoing"
	BookingStatusCompleted BookingStatus = "Completed"
	BookingStatusCancelled BookingStatus = "Cancelled"
	// BookingStatusOverdue is a read-time projection, never stored.
	BookingStatusOverdue BookingStatus = "Overdue"
)

type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

// IsTerminal reports whether a stored booking status permits no further
// transition.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// HoldsCar reports whether a booking in this status keeps the car off the
// available inventory.
func (s BookingStatus) HoldsCar() bool {
	return s == BookingStatusOngoing
}

type DamageAssessment struct {
	HasDamage     bool   `json:"hasDamage"`
	Description   string `json:"description,omitempty"`
	AdditionalFee int    `json:"additionalFee,omitempty"`
	IsPaid        bool   `json:"isPaid"`
}

type Booking struct {
	ID            string            `json:"id"`
	ReservationID string            `json:"reservationId,omitempty"`
	CarID         string            `json:"carId"`
	UserID        int               `json:"userId"`
	CustomerName  string            `json:"customerName,omitempty"`
	CarName       string            `json:"carName,omitempty"`
	StartDate     string            `json:"startDate"` // yyyy-mm-dd
	EndDate       string            `json:"endDate"`   // yyyy-mm-dd
	Status        BookingStatus     `json:"status"`
	TotalPrice    int               `json:"totalPrice"`
	PaymentStatus PaymentStatus     `json:"paymentStatus"`
	CreatedAt     time.Time         `json:"createdAt"`
	ReturnedAt    *time.Time        `json:"returnedAt,omitempty"`
	Damage        *DamageAssessment `json:"damageAssessment,omitempty"`
	OverdueFee    int               `json:"overdueFee,omitempty"`
	OverdueHours  int               `json:"overdueHours,omitempty"`
}

// EndInstant parses the booking end date as a UTC midnight instant. Overdue
// time is counted from this moment.
func (b *Booking) EndInstant() (time.Time, error) {
	return time.Parse("2006-01-02", b.EndDate)
}

// ProjectStatus returns the display status for a booking at the given
// instant. Ongoing bookings past their end date project as Overdue; the
// stored status is never rewritten.
func (b *Booking) ProjectStatus(now time.Time) BookingStatus {
	if b.Status != BookingStatusOngoing {
		return b.Status
	}
	end, err := b.EndInstant()
	if err != nil {
		return b.Status
	}
	if now.After(end) {
		return BookingStatusOverdue
	}
	return b.Status
}
