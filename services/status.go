package services

import (
	"govstay-server/models"
	"govstay-server/utils"
)

// DeriveStatus is the only place a booking status is computed. Cancelled wins
// over dates; a stay is Completed once today is after its check-out day. An
// unparseable check-out never completes.
func DeriveStatus(checkOut string, cancelled bool, today utils.LocalDate) string {
	if cancelled {
		return models.StatusCancelled
	}
	if today.After(utils.ParseLocalDate(checkOut)) {
		return models.StatusCompleted
	}
	return models.StatusActive
}

// BookingView is a booking as returned to clients, with its derived status.
type BookingView struct {
	models.Booking
	Status string `json:"status"`
}

func NewBookingView(b models.Booking, today utils.LocalDate) BookingView {
	return BookingView{Booking: b, Status: DeriveStatus(b.CheckOut, b.Cancelled, today)}
}

func NewBookingViews(bookings []models.Booking, today utils.LocalDate) []BookingView {
	views := make([]BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, NewBookingView(b, today))
	}
	return views
}
