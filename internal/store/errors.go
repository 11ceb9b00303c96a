package store

import "errors"

var (
	// ErrCarNotFound is returned when an operation targets an unknown car id.
	ErrCarNotFound = errors.New("car not found")
	// ErrCarReferenced rejects a hard delete while a non-terminal
	// reservation or booking still references the car.
	ErrCarReferenced = errors.New("car is referenced by an active reservation or booking")
	// ErrMissingUserID rejects a reservation draft without an authenticated
	// numeric customer id. Checked before any network call.
	ErrMissingUserID = errors.New("reservation requires an authenticated user id")
	// ErrTerminalStatus rejects a transition out of a terminal status.
	ErrTerminalStatus = errors.New("status is terminal, no further transition permitted")
	// ErrInvalidTransition rejects a status change the reservation state
	// machine does not permit.
	ErrInvalidTransition = errors.New("status transition not permitted")
	// ErrReservationNotFound is returned when an update targets an unknown
	// reservation id.
	ErrReservationNotFound = errors.New("reservation not found")
	// ErrBookingNotFound is returned when an update targets an unknown
	// booking id.
	ErrBookingNotFound = errors.New("booking not found")
)
