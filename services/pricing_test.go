package services

import (
	"testing"

	"govstay-server/models"
	"govstay-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTwoNightsOneRoom(t *testing.T) {
	b := Calculate(1000, utils.NewDateRange("2024-06-10", "2024-06-12"), 1)
	assert.Equal(t, Breakdown{NightlyRate: 1000, Nights: 2, RoomsCount: 1, Subtotal: 2000, Tax: 360, Total: 2360}, b)
}

func TestCalculateGuardsZeroes(t *testing.T) {
	b := Calculate(1000, utils.NewDateRange("2024-06-10", "2024-06-10"), 0)
	assert.Equal(t, 1, b.Nights)
	assert.Equal(t, 1, b.RoomsCount)
	assert.Equal(t, int64(1180), b.Total)

	b = Calculate(1000, utils.NewDateRange("garbage", "2024-06-10"), 2)
	assert.Equal(t, 1, b.Nights)
	assert.Equal(t, int64(2000), b.Subtotal)
}

func TestCalculateIsMonotonic(t *testing.T) {
	var prev int64
	for nights := 1; nights <= 10; nights++ {
		r := utils.DateRange{CheckIn: utils.ParseLocalDate("2024-01-01"), CheckOut: utils.ParseLocalDate("2024-01-01").AddDays(nights)}
		total := Calculate(1400, r, 1).Total
		assert.Greater(t, total, prev)
		prev = total
	}
	prev = 0
	for rooms := 1; rooms <= 6; rooms++ {
		total := Calculate(1400, utils.NewDateRange("2024-01-01", "2024-01-03"), rooms).Total
		assert.Greater(t, total, prev)
		prev = total
	}
}

func TestTaxRounding(t *testing.T) {
	assert.Equal(t, int64(360), Tax(2000))
	assert.Equal(t, int64(252), Tax(1400)) // 252.0
	assert.Equal(t, int64(1), Tax(3))      // 0.54
	assert.Equal(t, int64(0), Tax(2))      // 0.36
	assert.Equal(t, int64(90), Tax(500))
}

func TestPlans(t *testing.T) {
	p := Pricing{BreakfastSurcharge: 400}
	plans := p.Plans(models.Room{ID: "R1", Type: models.RoomTypeRoom, Price: 1000})
	assert.Equal(t, []Plan{
		{Label: PlanRoomOnly, Price: 1000, Taxes: 180},
		{Label: PlanWithBreakfast, Price: 1400, Taxes: 252},
	}, plans)

	dorm := p.Plans(models.Room{ID: "D1", Type: models.RoomTypeDorm})
	assert.Equal(t, int64(2000), dorm[0].Price)

	plan, err := p.ResolvePlan(models.Room{Price: 1000}, PlanWithBreakfast)
	require.NoError(t, err)
	assert.Equal(t, int64(1400), plan.Price)

	plan, err = p.ResolvePlan(models.Room{Price: 1000}, "")
	require.NoError(t, err)
	assert.Equal(t, PlanRoomOnly, plan.Label)

	_, err = p.ResolvePlan(models.Room{Price: 1000}, "Suite Deluxe")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unknown_plan", verr.Code)
}

func TestBreakdownForStoredBooking(t *testing.T) {
	hotel := &models.Hotel{Rooms: []models.Room{{ID: "R1", Type: models.RoomTypeRoom, Price: 1200}}}
	b := models.Booking{CheckIn: "2024-06-10", CheckOut: "2024-06-13", SelectedRooms: []string{"R1", "R2"}}

	got := BreakdownFor(b, hotel)
	assert.Equal(t, int64(1200), got.NightlyRate)
	assert.Equal(t, 3, got.Nights)
	assert.Equal(t, int64(7200), got.Subtotal)

	b.Plan = models.PricingPlan{Label: PlanWithBreakfast, Price: 1600}
	assert.Equal(t, int64(1600), BreakdownFor(b, hotel).NightlyRate)

	b.Plan = models.PricingPlan{}
	b.RoomType = models.RoomTypeDorm
	assert.Equal(t, int64(2000), BreakdownFor(b, nil).NightlyRate)
}
