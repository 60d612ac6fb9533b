package services

import (
	"testing"

	"govstay-server/models"
	"govstay-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() BookingRequest {
	return BookingRequest{
		HotelID:          1,
		SelectedRooms:    []string{"R1"},
		CheckIn:          "2024-06-10",
		CheckOut:         "2024-06-12",
		Guests:           2,
		GuestNames:       []string{"Asha", "Ravi"},
		ApplicantName:    "Asha Naik",
		ApplicantAddress: "Panaji, Goa",
		GovtServant:      "yes",
		Purpose:          models.PurposeOfficial,
	}
}

func TestValidateRequest(t *testing.T) {
	hotel := &models.Hotel{Rooms: testRooms()}
	today := utils.ParseLocalDate("2024-06-01")

	r, err := ValidateRequest(validRequest(), hotel, today)
	require.NoError(t, err)
	assert.Equal(t, "[2024-06-10, 2024-06-12)", r.String())

	cases := []struct {
		name   string
		mutate func(*BookingRequest)
		field  string
		code   string
	}{
		{"no rooms", func(r *BookingRequest) { r.SelectedRooms = nil }, "selectedRooms", "required"},
		{"bad check-in", func(r *BookingRequest) { r.CheckIn = "10/06/2024" }, "checkIn", "invalid_date"},
		{"past check-in", func(r *BookingRequest) { r.CheckIn = "2024-05-30" }, "checkIn", "in_past"},
		{"same day", func(r *BookingRequest) { r.CheckOut = r.CheckIn }, "checkOut", "before_check_in"},
		{"check-out first", func(r *BookingRequest) { r.CheckOut = "2024-06-09" }, "checkOut", "before_check_in"},
		{"no applicant", func(r *BookingRequest) { r.ApplicantName = "  " }, "applicantName", "required"},
		{"no address", func(r *BookingRequest) { r.ApplicantAddress = "" }, "applicantAddress", "required"},
		{"no govt flag", func(r *BookingRequest) { r.GovtServant = "" }, "govtServant", "required"},
		{"bad purpose", func(r *BookingRequest) { r.Purpose = "holiday" }, "purpose", "required"},
		{"too many guests", func(r *BookingRequest) { r.Guests = 11 }, "guests", "out_of_range"},
		{"name count", func(r *BookingRequest) { r.GuestNames = []string{"Asha"} }, "guestNames", "incomplete"},
		{"blank name", func(r *BookingRequest) { r.GuestNames = []string{"Asha", " "} }, "guestNames", "incomplete"},
		{"duplicate room", func(r *BookingRequest) { r.SelectedRooms = []string{"R1", "R1"} }, "selectedRooms", "duplicate"},
		{"removed room", func(r *BookingRequest) { r.SelectedRooms = []string{"R9"} }, "selectedRooms", "room_not_bookable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := ValidateRequest(req, hotel, today)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.code, verr.Code)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestCheckConflicts(t *testing.T) {
	stays := []Occupancy{{CheckIn: "2024-06-10", CheckOut: "2024-06-12", Rooms: []string{"R1"}}}
	a := ComputeAvailability(testRooms(), stays, utils.NewDateRange("2024-06-11", "2024-06-13"))

	err := CheckConflicts([]string{"R2", "R1"}, a)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"R1"}, conflict.Rooms)

	assert.NoError(t, CheckConflicts([]string{"R2"}, a))

	unknown := UnknownAvailability(testRooms(), utils.NewDateRange("2024-06-11", "2024-06-13"))
	assert.ErrorIs(t, CheckConflicts([]string{"R2"}, unknown), ErrAvailabilityUnknown)
}
