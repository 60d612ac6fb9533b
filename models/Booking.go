package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	StatusActive    = "Active"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

const (
	PurposeOfficial = "official"
	PurposePrivate  = "private"
)

// PricingPlan is the nightly rate the guest agreed to at booking time.
type PricingPlan struct {
	Label string `json:"label" gorm:"column:plan_label;size:64"`
	Price int64  `json:"price" gorm:"column:plan_price"`
}

// Booking dates are YYYY-MM-DD strings with [CheckIn, CheckOut) semantics.
// Status is never stored; it is derived from CheckOut and Cancelled on read.
type Booking struct {
	ID                    uint                        `json:"id" gorm:"primaryKey"`
	ReceiptNo             string                      `json:"receiptNo" gorm:"size:32;index"`
	UserID                uint                        `json:"userID" gorm:"index"`
	UserEmail             string                      `json:"userEmail" gorm:"size:256"`
	HotelID               uint                        `json:"hotelID" gorm:"index"`
	HotelName             string                      `json:"hotelName"`
	RoomType              string                      `json:"roomType" gorm:"size:16"`
	SelectedRooms         datatypes.JSONSlice[string] `json:"selectedRooms"`
	CheckIn               string                      `json:"checkIn" gorm:"size:10;index"`
	CheckOut              string                      `json:"checkOut" gorm:"size:10;index"`
	Guests                int                         `json:"guests"`
	GuestNames            datatypes.JSONSlice[string] `json:"guestNames"`
	ApplicantName         string                      `json:"applicantName"`
	ApplicantAddress      string                      `json:"applicantAddress"`
	GovtServant           bool                        `json:"govtServant"`
	Purpose               string                      `json:"purpose" gorm:"size:16"`
	Plan                  PricingPlan                 `json:"pricingPlan" gorm:"embedded"`
	Cancelled             bool                        `json:"cancelled" gorm:"index"`
	CancellationRequested bool                        `json:"cancellationRequested"`
	CancellationReason    string                      `json:"cancellationReason,omitempty"`
	CreatedAt             time.Time                   `json:"createdAt"`
	UpdatedAt             time.Time                   `json:"updatedAt"`
}

// RoomNight is one occupied night of one room. The unique index is the
// authoritative double-booking guard: a second writer for the same night fails.
type RoomNight struct {
	ID        uint   `gorm:"primaryKey"`
	HotelID   uint   `gorm:"uniqueIndex:idx_room_night,priority:1;not null"`
	RoomID    string `gorm:"uniqueIndex:idx_room_night,priority:2;size:64;not null"`
	Night     string `gorm:"uniqueIndex:idx_room_night,priority:3;size:10;not null"`
	BookingID uint   `gorm:"index;not null"`
}

// PublicBooking is the PII-free projection of a booking, keyed by booking id.
type PublicBooking struct {
	BookingID     uint                        `json:"bookingID" gorm:"primaryKey;autoIncrement:false"`
	HotelID       uint                        `json:"hotelID" gorm:"index"`
	CheckIn       string                      `json:"checkIn" gorm:"size:10"`
	CheckOut      string                      `json:"checkOut" gorm:"size:10"`
	SelectedRooms datatypes.JSONSlice[string] `json:"selectedRooms"`
	UpdatedAt     time.Time                   `json:"updatedAt"`
}
