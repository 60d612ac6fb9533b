package routes

import (
	"strings"

	"govstay-server/services"
	"govstay-server/utils"

	"github.com/kataras/iris/v12"
)

// AdminListBookings - GET /api/admin/bookings?status=&q=&date=&hotel_id=&page=&per_page=
func AdminListBookings(ctx iris.Context) {
	page, perPage := utils.Paging(ctx)
	f := services.BookingFilter{
		Status:  strings.TrimSpace(ctx.URLParam("status")),
		Query:   strings.TrimSpace(ctx.URLParam("q")),
		Date:    strings.TrimSpace(ctx.URLParam("date")),
		HotelID: uint(ctx.URLParamUint64("hotel_id")),
		Page:    page,
		PerPage: perPage,
	}
	if f.Date != "" {
		if !utils.ParseLocalDate(f.Date).Valid() {
			utils.JSONError(ctx, iris.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
	}

	items, total, err := bookings.List(ctx.Request().Context(), f)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONPage(ctx, items, page, perPage, total)
}

// AdminGetBooking - GET /api/admin/bookings/{id}
func AdminGetBooking(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	b, err := bookings.Get(ctx.Request().Context(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	hotel, _ := bookings.Hotel(ctx.Request().Context(), b.HotelID)
	utils.JSONData(ctx, iris.Map{
		"booking":   services.NewBookingView(*b, bookings.Today()),
		"breakdown": services.BreakdownFor(*b, hotel),
	})
}

// AdminUpdateBooking - PATCH /api/admin/bookings/{id}
func AdminUpdateBooking(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var patch services.BookingPatch
	if err := ctx.ReadJSON(&patch); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	before, after, err := bookings.AdminUpdate(ctx.Request().Context(), id, patch)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Audit(ctx, "booking.update", "booking", id, before, after)
	utils.JSONData(ctx, services.NewBookingView(*after, bookings.Today()))
}

// AdminCancelBooking - POST /api/admin/bookings/{id}/cancel { reason }
func AdminCancelBooking(ctx iris.Context) {
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
	before, after, err := bookings.Cancel(ctx.Request().Context(), id, body.Reason)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Audit(ctx, "booking.cancel", "booking", id, before, after)
	utils.JSONData(ctx, services.NewBookingView(*after, bookings.Today()))
}

// AdminDeleteBooking - DELETE /api/admin/bookings/{id}
func AdminDeleteBooking(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	before, err := bookings.Delete(ctx.Request().Context(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Audit(ctx, "booking.delete", "booking", id, before, nil)
	ctx.StatusCode(iris.StatusNoContent)
}
