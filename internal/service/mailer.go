package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"carrental-storefront/internal/logger"
)

// Mailer delivers back-office email for storefront events. Implementations
// must be safe for concurrent use.
type Mailer interface {
	SendReservationCreated(ctx context.Context, customerName, carName, startDate, endDate string, totalPrice int) error
	SendReservationCancelled(ctx context.Context, customerName, carName string) error
	SendBookingCreated(ctx context.Context, customerName, carName, startDate, endDate string, totalPrice int) error
	SendCarReturned(ctx context.Context, customerName, carName string, overdueFee int) error
	SendOverdueReminder(ctx context.Context, customerName, carName, endDate string, overdueHours, overdueFee int) error
}

type sendGridMailer struct {
	apiKey     string
	fromEmail  string
	fromName   string
	adminEmail string
}

// NewSendGridMailer builds the SendGrid-backed Mailer. All messages go to
// the configured back-office address.
func NewSendGridMailer(apiKey, fromEmail, fromName, adminEmail string) Mailer {
	return &sendGridMailer{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
		adminEmail: adminEmail,
	}
}

func (m *sendGridMailer) send(subject, plainText string) error {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail("Back Office", m.adminEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, "")

	client := sendgrid.NewSendClient(m.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (m *sendGridMailer) SendReservationCreated(_ context.Context, customerName, carName, startDate, endDate string, totalPrice int) error {
	subject := fmt.Sprintf("New Reservation - %s", carName)
	body := fmt.Sprintf("%s reserved %s from %s to %s.\nTotal: %d\n\nThe reservation is waiting for approval.",
		customerName, carName, startDate, endDate, totalPrice)
	return m.send(subject, body)
}

func (m *sendGridMailer) SendReservationCancelled(_ context.Context, customerName, carName string) error {
	subject := fmt.Sprintf("Reservation Cancelled - %s", carName)
	body := fmt.Sprintf("%s cancelled the reservation for %s. The car is available again.", customerName, carName)
	return m.send(subject, body)
}

func (m *sendGridMailer) SendBookingCreated(_ context.Context, customerName, carName, startDate, endDate string, totalPrice int) error {
	subject := fmt.Sprintf("New Booking - %s", carName)
	body := fmt.Sprintf("%s booked %s from %s to %s.\nTotal: %d (Paid)",
		customerName, carName, startDate, endDate, totalPrice)
	return m.send(subject, body)
}

func (m *sendGridMailer) SendCarReturned(_ context.Context, customerName, carName string, overdueFee int) error {
	subject := fmt.Sprintf("Car Returned - %s", carName)
	body := fmt.Sprintf("%s returned %s.", customerName, carName)
	if overdueFee > 0 {
		body += fmt.Sprintf("\nOverdue fee collected: %d", overdueFee)
	}
	return m.send(subject, body)
}

func (m *sendGridMailer) SendOverdueReminder(_ context.Context, customerName, carName, endDate string, overdueHours, overdueFee int) error {
	subject := fmt.Sprintf("Overdue Rental - %s", carName)
	body := fmt.Sprintf("%s has not returned %s (due %s).\nHours overdue: %d\nAccrued fee: %d",
		customerName, carName, endDate, overdueHours, overdueFee)
	return m.send(subject, body)
}

type noopMailer struct{}

// NewNoopMailer returns a Mailer that only logs. Used when no SendGrid key
// is configured.
func NewNoopMailer() Mailer {
	return &noopMailer{}
}

func (noopMailer) log(event string) error {
	logger.Debug("Mail suppressed, no SendGrid key configured", "event", event)
	return nil
}

func (n noopMailer) SendReservationCreated(context.Context, string, string, string, string, int) error {
	return n.log("reservation_created")
}

func (n noopMailer) SendReservationCancelled(context.Context, string, string) error {
	return n.log("reservation_cancelled")
}

func (n noopMailer) SendBookingCreated(context.Context, string, string, string, string, int) error {
	return n.log("booking_created")
}

func (n noopMailer) SendCarReturned(context.Context, string, string, int) error {
	return n.log("car_returned")
}

func (n noopMailer) SendOverdueReminder(context.Context, string, string, string, int, int) error {
	return n.log("overdue_reminder")
}
