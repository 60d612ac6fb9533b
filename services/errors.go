package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrHotelNotFound       = errors.New("hotel not found")
	ErrRoomNotFound        = errors.New("room not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrForbidden           = errors.New("forbidden")
	ErrAvailabilityUnknown = errors.New("availability unknown")
	ErrLockBusy            = errors.New("another booking for these rooms is in progress")
)

// ValidationError rejects a submission before anything is written.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

// ConflictError means at least one selected room was taken for an
// overlapping night by an earlier booking.
type ConflictError struct {
	Rooms []string `json:"rooms"`
}

func (e *ConflictError) Error() string {
	if len(e.Rooms) == 0 {
		return "selected rooms are no longer available, please re-select"
	}
	return "rooms no longer available, please re-select: " + strings.Join(e.Rooms, ", ")
}
