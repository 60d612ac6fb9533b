package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"govstay-server/models"
	"govstay-server/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderReceiptHTML(t *testing.T) {
	b := models.Booking{
		ID:               12,
		ReceiptNo:        "GS-20240601-AB12",
		HotelName:        "Goa Sadan",
		RoomType:         models.RoomTypeRoom,
		SelectedRooms:    []string{"R1", "R2"},
		CheckIn:          "2024-06-10",
		CheckOut:         "2024-06-12",
		Guests:           2,
		GuestNames:       []string{"Asha", "<script>alert(1)</script>"},
		ApplicantName:    "Asha Naik",
		ApplicantAddress: "Panaji, Goa",
		GovtServant:      true,
		Purpose:          models.PurposeOfficial,
		Plan:             models.PricingPlan{Label: PlanRoomOnly, Price: 1000},
		CreatedAt:        time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	r := NewReceipt(b, nil, utils.ParseLocalDate("2024-06-02"))

	var buf bytes.Buffer
	require.NoError(t, RenderReceiptHTML(&buf, r))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	text := func(sel string) string { return strings.TrimSpace(doc.Find(sel).Text()) }
	assert.Equal(t, "GS-20240601-AB12", text("#receipt-no"))
	assert.Equal(t, "Active", text("#status"))
	assert.Equal(t, "R1, R2", text("#rooms"))
	assert.Equal(t, "2024-06-10 (Monday)", text("#check-in"))
	assert.Equal(t, "2", text("#nights"))
	assert.Equal(t, "Yes", text("#govt-servant"))
	assert.Equal(t, "4000 INR", text("#subtotal"))
	assert.Equal(t, "720 INR", text("#tax"))
	assert.Equal(t, "4720 INR", text("#total"))
	assert.Equal(t, 2, doc.Find("#guest-names li").Length())
	assert.Equal(t, 0, doc.Find("script").Length(), "guest names are escaped")
}

func TestNewReceiptFallsBackToGeneratedNumber(t *testing.T) {
	b := models.Booking{ID: 0x2A, CheckIn: "2024-06-10", CheckOut: "2024-06-11", SelectedRooms: []string{"D1"}, RoomType: models.RoomTypeDorm, CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	hotel := &models.Hotel{Name: "Goa Bhavan", Rooms: []models.Room{{ID: "D1", Type: models.RoomTypeDorm}}}

	r := NewReceipt(b, hotel, utils.ParseLocalDate("2024-06-02"))
	assert.Equal(t, "GS-20240601-002A", r.Number)
	assert.Equal(t, r.Number, NewReceipt(b, hotel, utils.ParseLocalDate("2024-06-05")).Number, "same booking, same number")
	assert.Equal(t, "Goa Bhavan", r.HotelName)
	assert.Equal(t, int64(2000), r.Breakdown.NightlyRate)
	assert.Equal(t, int64(2360), r.Breakdown.Total)
}
