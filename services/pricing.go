package services

import (
	"govstay-server/models"
	"govstay-server/utils"
)

const (
	PlanRoomOnly      = "Room Only"
	PlanWithBreakfast = "Room with Breakfast"

	// taxPercent is the flat GST rate applied to every booking.
	taxPercent = 18
)

// Fallback nightly rates when a room carries no price.
const (
	DefaultRoomPrice int64 = 1000
	DefaultDormPrice int64 = 2000
)

func DefaultBasePrice(roomType string) int64 {
	if roomType == models.RoomTypeDorm {
		return DefaultDormPrice
	}
	return DefaultRoomPrice
}

// Plan is one selectable rate for a room.
type Plan struct {
	Label string `json:"label"`
	Price int64  `json:"price"`
	Taxes int64  `json:"taxes"` // per night
}

type Pricing struct {
	BreakfastSurcharge int64
}

func BasePrice(room models.Room) int64 {
	if room.Price > 0 {
		return room.Price
	}
	return DefaultBasePrice(room.Type)
}

func (p Pricing) Plans(room models.Room) []Plan {
	base := BasePrice(room)
	return []Plan{
		{Label: PlanRoomOnly, Price: base, Taxes: Tax(base)},
		{Label: PlanWithBreakfast, Price: base + p.BreakfastSurcharge, Taxes: Tax(base + p.BreakfastSurcharge)},
	}
}

// ResolvePlan maps a submitted label to its server-side price. An empty label
// selects Room Only.
func (p Pricing) ResolvePlan(room models.Room, label string) (Plan, error) {
	if label == "" {
		label = PlanRoomOnly
	}
	for _, plan := range p.Plans(room) {
		if plan.Label == label {
			return plan, nil
		}
	}
	return Plan{}, invalid("pricingPlan", "unknown_plan", "unknown pricing plan "+label)
}

// Tax is round(amount * 18%), half away from zero.
func Tax(amount int64) int64 {
	if amount < 0 {
		return -Tax(-amount)
	}
	return (amount*taxPercent + 50) / 100
}

// Breakdown is shared by the JSON receipt and the rendered document.
type Breakdown struct {
	NightlyRate int64 `json:"nightlyRate"`
	Nights      int   `json:"nights"`
	RoomsCount  int   `json:"roomsCount"`
	Subtotal    int64 `json:"subtotal"`
	Tax         int64 `json:"tax"`
	Total       int64 `json:"total"`
}

// Calculate never yields zero nights or zero rooms.
func Calculate(nightlyRate int64, r utils.DateRange, roomsCount int) Breakdown {
	nights := r.CheckIn.DaysUntil(r.CheckOut)
	if nights < 1 {
		nights = 1
	}
	if roomsCount < 1 {
		roomsCount = 1
	}
	subtotal := nightlyRate * int64(nights) * int64(roomsCount)
	tax := Tax(subtotal)
	return Breakdown{
		NightlyRate: nightlyRate,
		Nights:      nights,
		RoomsCount:  roomsCount,
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       subtotal + tax,
	}
}

// BreakdownFor prices a stored booking. The stored plan price wins; without
// one the first selected room's base price is used.
func BreakdownFor(b models.Booking, hotel *models.Hotel) Breakdown {
	rate := b.Plan.Price
	if rate <= 0 {
		rate = DefaultBasePrice(b.RoomType)
		if hotel != nil && len(b.SelectedRooms) > 0 {
			if room, ok := hotel.FindRoom(b.SelectedRooms[0]); ok {
				rate = BasePrice(room)
			}
		}
	}
	return Calculate(rate, utils.NewDateRange(b.CheckIn, b.CheckOut), len(b.SelectedRooms))
}
