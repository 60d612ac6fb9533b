package routes

import (
	"govstay-server/utils"

	"github.com/kataras/iris/v12"
)

// Mount registers every API party on app. access verifies access tokens and
// refresh verifies refresh tokens.
func Mount(app *iris.Application, access, refresh iris.Handler) {
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", Register)
		user.Post("/login", Login)
		user.Get("/me", access, utils.UserIDFromTokenMiddleware, GetMe)
	}

	hotels := app.Party("/api/hotels")
	{
		hotels.Get("/", ListHotels)
		hotels.Get("/{id:uint}", GetHotel)
		hotels.Get("/{id:uint}/rooms/{roomId}", GetRoom)
		hotels.Get("/{id:uint}/availability", GetAvailability)
		hotels.Get("/{id:uint}/public-availability", GetPublicAvailability)
		hotels.Get("/{id:uint}/public-bookings", ListPublicBookings)
	}

	booking := app.Party("/api/bookings", access, utils.UserIDFromTokenMiddleware)
	{
		booking.Post("/", CreateBooking)
		booking.Get("/mine", MyBookings)
		booking.Get("/{id:uint}", GetBooking)
		booking.Get("/{id:uint}/receipt", GetReceipt)
		booking.Get("/{id:uint}/receipt.html", GetReceiptHTML)
		booking.Post("/{id:uint}/cancellation-request", RequestCancellation)
	}

	admin := app.Party("/api/admin", access, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", AdminListUsers)
		admin.Patch("/users/{id:uint}/role", AdminChangeUserRole)
		admin.Get("/bookings", AdminListBookings)
		admin.Get("/bookings/{id:uint}", AdminGetBooking)
		admin.Patch("/bookings/{id:uint}", AdminUpdateBooking)
		admin.Post("/bookings/{id:uint}/cancel", AdminCancelBooking)
		admin.Delete("/bookings/{id:uint}", AdminDeleteBooking)
		admin.Post("/hotels", AdminCreateHotel)
		admin.Post("/hotels/{id:uint}/reindex", AdminReindexHotel)
		admin.Patch("/hotels/{id:uint}/pricing", AdminUpdatePricing)
		admin.Post("/hotels/{id:uint}/rooms/{roomId}/images", AdminUploadRoomImage)
		admin.Delete("/hotels/{id:uint}/rooms/{roomId}/images", AdminRemoveRoomImage)
		admin.Get("/stats", AdminStats)
		admin.Get("/activity", AdminActivity)
	}

	app.Post("/api/refresh", refresh, utils.RefreshToken)
}
