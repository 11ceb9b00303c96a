package domain

type CarStatus string

const (
	// CarStatusAvailable and CarStatusBooked are the wire values the upstream
	// API understands for availability updates.
	CarStatusAvailable CarStatus = "Available"
	CarStatusBooked    CarStatus = "Booked"
	CarStatusArchived  CarStatus = "Archived"
)

type Car struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	PricePerDay   int      `json:"pricePerDay"`
	Seats         int      `json:"seats"`
	Transmission  string   `json:"transmission"`
	FuelType      string   `json:"fuelType"`
	Images        []string `json:"images"`
	Available     bool     `json:"available"`
	Archived      bool     `json:"archived,omitempty"`
	PlateNumber   string   `json:"plateNumber"`
	ChassisNumber string   `json:"chassisNumber"`
	Year          int      `json:"year"`
	Description   string   `json:"description"`
}

// WireStatus maps the availability boolean to the upstream status value.
func (c *Car) WireStatus() CarStatus {
	if c.Archived {
		return CarStatusArchived
	}
	if c.Available {
		return CarStatusAvailable
	}
	return CarStatusBooked
}
