package services

import (
	"errors"
	"fmt"
)

var (
	ErrLotNotFound  = errors.New("parking lot not found")
	ErrSpotNotFound = errors.New("parking spot not found")
	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")

	// ErrNoAvailableSpots means a reserve request hit a lot with zero
	// available spots.
	ErrNoAvailableSpots = errors.New("no available spots")

	// ErrCapacityConflict means a shrink request would have to remove
	// occupied spots.
	ErrCapacityConflict = errors.New("cannot reduce spots below occupied count")

	// ErrLotOccupied blocks deleting a lot while any of its spots is occupied.
	ErrLotOccupied = errors.New("lot has occupied spots")

	ErrNoActiveReservation = errors.New("no active reservation for this spot")

	ErrNameTaken          = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrServiceUnavailable wraps persistent storage failures; the request
	// can be retried by the caller, nothing here is fatal to the process.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError reports bad or missing input, naming the field so the
// caller can correct it.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func required(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}

func mustBePositive(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "must be positive"}
}
