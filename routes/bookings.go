package routes

import (
	"bytes"

	"govstay-server/services"
	"govstay-server/utils"

	"github.com/kataras/iris/v12"
)

// CreateBooking - POST /api/bookings
func CreateBooking(ctx iris.Context) {
	var req services.BookingRequest
	if err := ctx.ReadJSON(&req); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	c := ctx.Request().Context()
	view, err := bookings.Create(c, callerID(ctx), req)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	hotel, err := bookings.Hotel(c, view.HotelID)
	if err != nil {
		hotel = nil
	}
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{
		"booking":   view,
		"breakdown": services.BreakdownFor(view.Booking, hotel),
	})
}

// MyBookings - GET /api/bookings/mine
func MyBookings(ctx iris.Context) {
	items, err := bookings.ForUser(ctx.Request().Context(), callerID(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONData(ctx, items)
}

// GetBooking - GET /api/bookings/{id}
func GetBooking(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	b, err := bookings.GetFor(ctx.Request().Context(), callerID(ctx), utils.GetAccessToken(ctx).IsAdmin(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONData(ctx, services.NewBookingView(*b, bookings.Today()))
}

func loadReceipt(ctx iris.Context) (services.Receipt, bool) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return services.Receipt{}, false
	}
	c := ctx.Request().Context()
	b, err := bookings.GetFor(c, callerID(ctx), utils.GetAccessToken(ctx).IsAdmin(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return services.Receipt{}, false
	}
	// a removed hotel still prices from the stored plan
	hotel, _ := bookings.Hotel(c, b.HotelID)
	return services.NewReceipt(*b, hotel, bookings.Today()), true
}

// GetReceipt - GET /api/bookings/{id}/receipt
func GetReceipt(ctx iris.Context) {
	r, ok := loadReceipt(ctx)
	if !ok {
		return
	}
	utils.JSONData(ctx, r)
}

// GetReceiptHTML - GET /api/bookings/{id}/receipt.html
func GetReceiptHTML(ctx iris.Context) {
	r, ok := loadReceipt(ctx)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := services.RenderReceiptHTML(&buf, r); err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.ContentType("text/html; charset=utf-8")
	ctx.Write(buf.Bytes())
}

// RequestCancellation - POST /api/bookings/{id}/cancellation-request
func RequestCancellation(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var body CancellationInput
	if ctx.GetContentLength() > 0 {
		if err := ctx.ReadJSON(&body); err != nil {
			utils.HandleValidationErrors(err, ctx)
			return
		}
	}
	view, err := bookings.RequestCancellation(ctx.Request().Context(), callerID(ctx), id, body.Reason)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONData(ctx, view)
}

type CancellationInput struct {
	Reason string `json:"reason" validate:"max=500"`
}
