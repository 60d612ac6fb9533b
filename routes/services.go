package routes

import (
	"context"
	"errors"

	"govstay-server/services"
	"govstay-server/utils"

	"github.com/kataras/iris/v12"
)

// Services are the domain services the handlers call. main wires them once
// at startup with Use.
type Services struct {
	Bookings *services.BookingService
	Catalog  *services.HotelCatalog
	Mirror   *services.GormMirrorStore
}

var (
	bookings *services.BookingService
	catalog  *services.HotelCatalog
	mirror   *services.GormMirrorStore
)

func Use(s Services) {
	bookings = s.Bookings
	catalog = s.Catalog
	mirror = s.Mirror
}

func idParam(ctx iris.Context, name string) (uint, bool) {
	id, err := ctx.Params().GetUint(name)
	if err != nil || id == 0 {
		utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", "invalid "+name)
		return 0, false
	}
	return id, true
}

func callerID(ctx iris.Context) uint {
	return ctx.Values().GetUintDefault("userID", 0)
}

// handleServiceError writes the HTTP form of a service error.
func handleServiceError(ctx iris.Context, err error) {
	var verr *services.ValidationError
	var conflict *services.ConflictError
	switch {
	case errors.As(err, &verr):
		ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{
			"error":   "validation_error",
			"message": verr.Message,
			"fields":  []iris.Map{{"field": verr.Field, "code": verr.Code}},
		})
	case errors.As(err, &conflict):
		ctx.StopWithJSON(iris.StatusConflict, iris.Map{
			"error":   "rooms_unavailable",
			"message": conflict.Error(),
			"rooms":   conflict.Rooms,
		})
	case errors.Is(err, services.ErrLockBusy):
		utils.JSONError(ctx, iris.StatusConflict, "booking_in_progress", "another booking for these rooms is in progress, try again")
	case errors.Is(err, services.ErrHotelNotFound),
		errors.Is(err, services.ErrRoomNotFound),
		errors.Is(err, services.ErrBookingNotFound):
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", "you cannot access this booking")
	case errors.Is(err, services.ErrAvailabilityUnknown),
		errors.Is(err, context.DeadlineExceeded):
		utils.JSONError(ctx, iris.StatusServiceUnavailable, "unavailable", "please try again shortly")
	default:
		utils.Log.WithError(err).WithField("path", ctx.Path()).Error("request failed")
		utils.JSONError(ctx, iris.StatusInternalServerError, "server_error", "Internal Server Error")
	}
}
