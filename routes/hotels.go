package routes

import (
	"context"
	"errors"

	"govstay-server/services"
	"govstay-server/utils"

	"github.com/kataras/iris/v12"
)

// ListHotels - GET /api/hotels?q=
func ListHotels(ctx iris.Context) {
	hotels, err := catalog.List(ctx.Request().Context(), ctx.URLParamTrim("q"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONData(ctx, hotels)
}

// GetHotel - GET /api/hotels/{id}
func GetHotel(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	hotel, err := catalog.Get(ctx.Request().Context(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONData(ctx, hotel)
}

// GetRoom - GET /api/hotels/{id}/rooms/{roomId}
func GetRoom(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	details, err := catalog.Room(ctx.Request().Context(), id, ctx.Params().Get("roomId"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONData(ctx, details)
}

// GetAvailability - GET /api/hotels/{id}/availability?checkIn=&checkOut=&floor=
//
// Only room ids and counts are returned. An invalid range is a 200 with the
// invalid_range state; an unreadable store is a 503 with the unknown state.
func GetAvailability(ctx iris.Context) {
	writeAvailability(ctx, bookings.Availability)
}

// GetPublicAvailability - GET /api/hotels/{id}/public-availability?checkIn=&checkOut=&floor=
//
// Same answer shape as GetAvailability, computed from the public mirror.
func GetPublicAvailability(ctx iris.Context) {
	writeAvailability(ctx, bookings.PublicAvailability)
}

type availabilityFunc func(ctx context.Context, hotelID uint, checkIn, checkOut string) (services.Availability, error)

func writeAvailability(ctx iris.Context, compute availabilityFunc) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	a, err := compute(ctx.Request().Context(), id, ctx.URLParamTrim("checkIn"), ctx.URLParamTrim("checkOut"))
	if floor := ctx.URLParamIntDefault("floor", 0); floor > 0 {
		a = a.FilterFloor(floor)
	}
	if err != nil {
		if errors.Is(err, services.ErrAvailabilityUnknown) {
			ctx.StopWithJSON(iris.StatusServiceUnavailable, a)
			return
		}
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(a)
}

// ListPublicBookings - GET /api/hotels/{id}/public-bookings
func ListPublicBookings(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	items, err := mirror.ListByHotel(ctx.Request().Context(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONData(ctx, items)
}
