package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoomTypeRoom = "Room"
	RoomTypeDorm = "Dorm"
)

// Room lives inside its hotel's document and has no identity outside it.
// ID is the join key used by bookings and is never reused.
type Room struct {
	ID       string   `json:"id" validate:"required"`
	Number   string   `json:"number,omitempty"`
	Floor    int      `json:"floor" validate:"min=0"`
	Type     string   `json:"type" validate:"required,oneof=Room Dorm"`
	Price    int64    `json:"price" validate:"min=0"`
	Images   []string `json:"images,omitempty"`
	Size     string   `json:"size,omitempty"`
	Bed      string   `json:"bed,omitempty"`
	Capacity int      `json:"capacity,omitempty" validate:"min=0"`
}

type Hotel struct {
	gorm.Model
	Name        string                      `json:"name" gorm:"index"`
	Location    string                      `json:"location"`
	Description string                      `json:"description"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	Amenities   datatypes.JSONSlice[string] `json:"amenities"`
	Rooms       datatypes.JSONSlice[Room]   `json:"rooms"`
}

// FindRoom returns the room with the given id, if the hotel still has it.
func (h *Hotel) FindRoom(id string) (Room, bool) {
	for _, r := range h.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}
