package services

import (
	"strings"

	"govstay-server/models"
	"govstay-server/utils"

	"golang.org/x/exp/slices"
)

const maxGuests = 10

// BookingRequest is a guest's submission before any checks have run.
type BookingRequest struct {
	HotelID          uint     `json:"hotelID" validate:"required"`
	SelectedRooms    []string `json:"selectedRooms"`
	CheckIn          string   `json:"checkIn"`
	CheckOut         string   `json:"checkOut"`
	Guests           int      `json:"guests"`
	GuestNames       []string `json:"guestNames"`
	ApplicantName    string   `json:"applicantName"`
	ApplicantAddress string   `json:"applicantAddress"`
	GovtServant      string   `json:"govtServant"` // yes or no
	Purpose          string   `json:"purpose"`     // official or private
	PricingPlan      string   `json:"pricingPlan"`
}

// ValidateRequest runs every check that does not depend on other bookings.
// It returns the parsed stay on success.
func ValidateRequest(req BookingRequest, hotel *models.Hotel, today utils.LocalDate) (utils.DateRange, error) {
	r := utils.NewDateRange(req.CheckIn, req.CheckOut)

	if len(req.SelectedRooms) == 0 {
		return r, invalid("selectedRooms", "required", "please select at least one room before booking")
	}
	if !r.CheckIn.Valid() {
		return r, invalid("checkIn", "invalid_date", "check-in must be a date in YYYY-MM-DD format")
	}
	if !r.CheckOut.Valid() {
		return r, invalid("checkOut", "invalid_date", "check-out must be a date in YYYY-MM-DD format")
	}
	if r.CheckIn.Before(today) {
		return r, invalid("checkIn", "in_past", "check-in date cannot be in the past")
	}
	if !r.Valid() {
		return r, invalid("checkOut", "before_check_in", "check-out must be after check-in")
	}
	if strings.TrimSpace(req.ApplicantName) == "" {
		return r, invalid("applicantName", "required", "applicant name is required")
	}
	if strings.TrimSpace(req.ApplicantAddress) == "" {
		return r, invalid("applicantAddress", "required", "applicant address is required")
	}
	if req.GovtServant != "yes" && req.GovtServant != "no" {
		return r, invalid("govtServant", "required", "please select if you are a government servant")
	}
	if req.Purpose != models.PurposeOfficial && req.Purpose != models.PurposePrivate {
		return r, invalid("purpose", "required", "please select the purpose for accommodation")
	}
	if req.Guests < 1 || req.Guests > maxGuests {
		return r, invalid("guests", "out_of_range", "guests must be between 1 and 10")
	}
	if len(req.GuestNames) != req.Guests || slices.IndexFunc(req.GuestNames, isBlank) >= 0 {
		return r, invalid("guestNames", "incomplete", "please enter names for all guests")
	}

	seen := map[string]bool{}
	for _, id := range req.SelectedRooms {
		if seen[id] {
			return r, invalid("selectedRooms", "duplicate", "room "+id+" is selected twice")
		}
		seen[id] = true
		if _, ok := hotel.FindRoom(id); !ok {
			return r, invalid("selectedRooms", "room_not_bookable", "room "+id+" is no longer bookable")
		}
	}
	return r, nil
}

// CheckConflicts rejects the request if any selected room is occupied in a.
// Availability that is not ok is never treated as free.
func CheckConflicts(rooms []string, a Availability) error {
	switch a.State {
	case StateUnknown:
		return ErrAvailabilityUnknown
	case StateInvalidRange:
		return invalid("checkOut", "invalid_range", msgInvalidRange)
	}
	var taken []string
	for _, id := range rooms {
		if slices.Contains(a.Occupied, id) {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		return &ConflictError{Rooms: taken}
	}
	return nil
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
