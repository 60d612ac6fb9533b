package routes

import (
	"govstay-server/models"
	"govstay-server/utils"

	"github.com/kataras/iris/v12"
)

// AdminCreateHotel - POST /api/admin/hotels
func AdminCreateHotel(ctx iris.Context) {
	var input HotelInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	hotel := models.Hotel{
		Name:        input.Name,
		Location:    input.Location,
		Description: input.Description,
		Images:      input.Images,
		Amenities:   input.Amenities,
		Rooms:       input.Rooms,
	}
	if err := catalog.Create(ctx.Request().Context(), &hotel); err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Audit(ctx, "hotel.create", "hotel", hotel.ID, nil, hotel)
	ctx.StatusCode(iris.StatusCreated)
	utils.JSONData(ctx, hotel)
}

// AdminReindexHotel - POST /api/admin/hotels/{id}/reindex
func AdminReindexHotel(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if catalog.Search == nil {
		utils.JSONError(ctx, iris.StatusServiceUnavailable, "search_disabled", "search index is not configured")
		return
	}
	if err := catalog.Reindex(ctx.Request().Context(), id); err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONData(ctx, iris.Map{"hotelID": id, "indexed": true})
}

// AdminUpdatePricing - PATCH /api/admin/hotels/{id}/pricing { roomPrice, dormPrice }
//
// Bookings already made keep the plan price they were made at.
func AdminUpdatePricing(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var input PricingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	before, err := catalog.Get(ctx.Request().Context(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	hotel, err := catalog.SetTypePrices(ctx.Request().Context(), id, input.RoomPrice, input.DormPrice)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Audit(ctx, "hotel.pricing_update", "hotel", id, before.Rooms, hotel.Rooms)
	utils.JSONData(ctx, hotel)
}

// AdminUploadRoomImage - POST /api/admin/hotels/{id}/rooms/{roomId}/images { image }
func AdminUploadRoomImage(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var input ImageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	roomID := ctx.Params().Get("roomId")
	url, err := catalog.AddRoomImage(ctx.Request().Context(), id, roomID, input.Image)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Audit(ctx, "room.image_add", "hotel", id, nil, iris.Map{"room": roomID, "url": url})
	ctx.StatusCode(iris.StatusCreated)
	utils.JSONData(ctx, iris.Map{"url": url})
}

// AdminRemoveRoomImage - DELETE /api/admin/hotels/{id}/rooms/{roomId}/images { url }
func AdminRemoveRoomImage(ctx iris.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var input ImageRemoveInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	roomID := ctx.Params().Get("roomId")
	if err := catalog.RemoveRoomImage(ctx.Request().Context(), id, roomID, input.URL); err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.Audit(ctx, "room.image_remove", "hotel", id, iris.Map{"room": roomID, "url": input.URL}, nil)
	ctx.StatusCode(iris.StatusNoContent)
}

type HotelInput struct {
	Name        string        `json:"name" validate:"required,max=256"`
	Location    string        `json:"location" validate:"required,max=256"`
	Description string        `json:"description"`
	Images      []string      `json:"images"`
	Amenities   []string      `json:"amenities"`
	Rooms       []models.Room `json:"rooms" validate:"required,min=1,dive"`
}

type PricingInput struct {
	RoomPrice int64 `json:"roomPrice" validate:"gte=0"`
	DormPrice int64 `json:"dormPrice" validate:"gte=0"`
}

type ImageInput struct {
	Image string `json:"image" validate:"required"`
}

type ImageRemoveInput struct {
	URL string `json:"url" validate:"required,url"`
}
