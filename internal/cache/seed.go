package cache

import (
	"time"

	"carrental-storefront/internal/domain"
)

// SeedCars is the built-in inventory used when the cars snapshot is missing
// or unreadable.
func SeedCars() []domain.Car {
	return []domain.Car{
		{
			ID:            "C001",
			Name:          "Toyota Corolla Cross",
			Type:          "SUV",
			PricePerDay:   4500,
			Seats:         5,
			Transmission:  "Automatic",
			FuelType:      "Hybrid",
			Images:        []string{"/images/cars/corolla-cross-1.jpg", "/images/cars/corolla-cross-2.jpg"},
			Available:     true,
			PlateNumber:   "CAB-1427",
			ChassisNumber: "JTNKHMBX8M3098765",
			Year:          2023,
			Description:   "Compact hybrid SUV, economical on long trips.",
		},
		{
			ID:            "C002",
			Name:          "Honda Civic",
			Type:          "Sedan",
			PricePerDay:   5000,
			Seats:         5,
			Transmission:  "Automatic",
			FuelType:      "Petrol",
			Images:        []string{"/images/cars/civic-1.jpg"},
			Available:     true,
			PlateNumber:   "CAC-3318",
			ChassisNumber: "2HGFC2F59MH512348",
			Year:          2022,
			Description:   "Well-kept sedan with full service history.",
		},
		{
			ID:            "C003",
			Name:          "Suzuki Every",
			Type:          "Van",
			PricePerDay:   3500,
			Seats:         7,
			Transmission:  "Manual",
			FuelType:      "Petrol",
			Images:        []string{"/images/cars/every-1.jpg"},
			Available:     true,
			PlateNumber:   "PE-7721",
			ChassisNumber: "DA17V-universal102",
			Year:          2019,
			Description:   "Budget van for group travel and deliveries.",
		},
	}
}

// SeedBookings returns the built-in booking history used when the bookings
// snapshot is missing or unreadable.
func SeedBookings() []domain.Booking {
	created := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	returned := time.Date(2025, 3, 17, 11, 0, 0, 0, time.UTC)
	return []domain.Booking{
		{
			ID:            "B001",
			CarID:         "C002",
			UserID:        1001,
			CustomerName:  "Nadeesha Perera",
			CarName:       "Honda Civic",
			StartDate:     "2025-03-10",
			EndDate:       "2025-03-17",
			Status:        domain.BookingStatusCompleted,
			TotalPrice:    35000,
			PaymentStatus: domain.PaymentStatusPaid,
			CreatedAt:     created,
			ReturnedAt:    &returned,
		},
	}
}

// SeedNotifications returns the built-in notification feed used when the
// notifications snapshot is missing or unreadable.
func SeedNotifications() []domain.Notification {
	return []domain.Notification{
		{
			ID:        "N001",
			Type:      domain.NotificationTypeBooking,
			Title:     "Booking Completed",
			Message:   "Honda Civic was returned by Nadeesha Perera.",
			Timestamp: time.Date(2025, 3, 17, 11, 0, 0, 0, time.UTC),
			Read:      true,
			Data:      map[string]string{"bookingId": "B001", "carId": "C002"},
		},
	}
}
