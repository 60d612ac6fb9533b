package services

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"govstay-server/models"
	"govstay-server/utils"
)

// Receipt carries everything both receipt renderings need.
type Receipt struct {
	Number    string      `json:"receiptNo"`
	Booking   BookingView `json:"booking"`
	HotelName string      `json:"hotelName"`
	Breakdown Breakdown   `json:"breakdown"`
	IssuedOn  string      `json:"issuedOn"`
}

func NewReceipt(b models.Booking, hotel *models.Hotel, today utils.LocalDate) Receipt {
	name := b.HotelName
	if hotel != nil && hotel.Name != "" {
		name = hotel.Name
	}
	number := b.ReceiptNo
	if number == "" {
		number = legacyReceiptNo(b)
	}
	return Receipt{
		Number:    number,
		Booking:   NewBookingView(b, today),
		HotelName: name,
		Breakdown: BreakdownFor(b, hotel),
		IssuedOn:  today.String(),
	}
}

// legacyReceiptNo numbers bookings stored before receipt numbers existed. It
// depends only on the booking so every render shows the same number.
func legacyReceiptNo(b models.Booking) string {
	return fmt.Sprintf("GS-%s-%04X", b.CreatedAt.Format("20060102"), b.ID%0x10000)
}

func weekday(date string) string {
	d := utils.ParseLocalDate(date)
	if !d.Valid() {
		return ""
	}
	t, _ := time.Parse(utils.DateLayout, d.String())
	return t.Weekday().String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

var receiptTemplate = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"weekday": weekday,
	"yesno":   yesNo,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>GovStay receipt {{.Number}}</title>
</head>
<body>
<h1>GOVSTAY - BOOKING CONFIRMATION</h1>
<section id="booking">
<h2>Booking Details</h2>
<dl>
<dt>Receipt No</dt><dd id="receipt-no">{{.Number}}</dd>
<dt>Booking ID</dt><dd id="booking-id">{{.Booking.ID}}</dd>
<dt>Issued</dt><dd id="issued-on">{{.IssuedOn}}</dd>
<dt>Status</dt><dd id="status">{{.Booking.Status}}</dd>
</dl>
</section>
<section id="stay">
<h2>Accommodation Details</h2>
<dl>
<dt>Hotel</dt><dd id="hotel">{{.HotelName}}</dd>
<dt>Room Number(s)</dt><dd id="rooms">{{range $i, $r := .Booking.SelectedRooms}}{{if $i}}, {{end}}{{$r}}{{end}}</dd>
<dt>Room Type</dt><dd id="room-type">{{.Booking.RoomType}}</dd>
<dt>Check-in</dt><dd id="check-in">{{.Booking.CheckIn}} ({{weekday .Booking.CheckIn}})</dd>
<dt>Check-out</dt><dd id="check-out">{{.Booking.CheckOut}} ({{weekday .Booking.CheckOut}})</dd>
<dt>Nights</dt><dd id="nights">{{.Breakdown.Nights}}</dd>
</dl>
</section>
<section id="guests">
<h2>Guest Information</h2>
<dl>
<dt>Applicant</dt><dd id="applicant">{{.Booking.ApplicantName}}</dd>
<dt>Address</dt><dd id="address">{{.Booking.ApplicantAddress}}</dd>
<dt>Government Servant</dt><dd id="govt-servant">{{yesno .Booking.GovtServant}}</dd>
<dt>Purpose</dt><dd id="purpose">{{.Booking.Purpose}}</dd>
<dt>Guests</dt><dd id="guest-count">{{.Booking.Guests}}</dd>
</dl>
<ol id="guest-names">{{range .Booking.GuestNames}}<li>{{.}}</li>{{end}}</ol>
</section>
<section id="payment">
<h2>Payment Summary</h2>
<table>
<tr><th>Selected Plan</th><td id="plan">{{.Booking.Plan.Label}}</td></tr>
<tr><th>Price per Room per Night</th><td id="rate">{{.Breakdown.NightlyRate}} INR</td></tr>
<tr><th>Rooms</th><td id="rooms-count">{{.Breakdown.RoomsCount}}</td></tr>
<tr><th>Subtotal</th><td id="subtotal">{{.Breakdown.Subtotal}} INR</td></tr>
<tr><th>Taxes &amp; Fees (18% GST)</th><td id="tax">{{.Breakdown.Tax}} INR</td></tr>
<tr><th>Total Amount</th><td id="total">{{.Breakdown.Total}} INR</td></tr>
</table>
</section>
<footer>
<p>GovStay Support: support@govstay.goa.gov.in</p>
<p>Thank you for choosing GovStay! We look forward to your stay.</p>
</footer>
</body>
</html>
`))

// RenderReceiptHTML writes the printable receipt. Guest input is escaped.
func RenderReceiptHTML(w io.Writer, r Receipt) error {
	return receiptTemplate.Execute(w, r)
}
