package utils

import (
	"fmt"
	"math"
	"time"
)

// DefaultOverdueHourlyFee is the fallback late-return charge per started hour.
const DefaultOverdueHourlyFee = 300

// DefaultSecurityDeposit is the fallback refundable deposit quoted alongside
// the rental cost. It is surfaced to the customer only and never folded
// into a persisted total.
const DefaultSecurityDeposit = 5000

// Quote is the price breakdown shown before a reservation is placed.
type Quote struct {
	Days            int `json:"days"`
	RentalCost      int `json:"rentalCost"`
	SecurityDeposit int `json:"securityDeposit"`
}

// ParseDate converts a yyyy-mm-dd formatted string into a UTC time.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", dateStr)
	}
	return t, nil
}

// RentalDays returns the number of chargeable days between two dates.
// The end date is the return day and is not charged; same-day rentals
// charge one day.
func RentalDays(startDate, endDate string) (int, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return 0, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return 0, err
	}
	if end.Before(start) {
		return 0, fmt.Errorf("end date %s is before start date %s", endDate, startDate)
	}
	days := int(end.Sub(start).Hours() / 24)
	if days == 0 {
		days = 1
	}
	return days, nil
}

// RentalCost computes the rental charge for the date span at the given
// per-day price.
func RentalCost(pricePerDay int, startDate, endDate string) (int, error) {
	days, err := RentalDays(startDate, endDate)
	if err != nil {
		return 0, err
	}
	return days * pricePerDay, nil
}

// QuoteRental builds the customer-facing price breakdown.
func QuoteRental(pricePerDay int, startDate, endDate string, deposit int) (*Quote, error) {
	days, err := RentalDays(startDate, endDate)
	if err != nil {
		return nil, err
	}
	if deposit <= 0 {
		deposit = DefaultSecurityDeposit
	}
	return &Quote{
		Days:            days,
		RentalCost:      days * pricePerDay,
		SecurityDeposit: deposit,
	}, nil
}

// OverdueHours returns the number of started hours between the rental end
// instant and now. Zero when the rental is not yet past due.
func OverdueHours(end, now time.Time) int {
	if !now.After(end) {
		return 0
	}
	return int(math.Ceil(now.Sub(end).Hours()))
}

// OverdueFee charges each started hour past the end instant at the hourly
// rate.
func OverdueFee(end, now time.Time, hourlyFee int) int {
	if hourlyFee <= 0 {
		hourlyFee = DefaultOverdueHourlyFee
	}
	return OverdueHours(end, now) * hourlyFee
}
