package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"govstay-server/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HotelIndex is the optional full-text catalog index.
type HotelIndex interface {
	Index(ctx context.Context, h models.Hotel) error
	Search(ctx context.Context, q string, limit int) ([]uint, error)
}

type ImageUploader interface {
	UploadBase64(ctx context.Context, base64Image, publicID string) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

type HotelCatalog struct {
	DB      *gorm.DB
	Search  HotelIndex // nil searches the database
	Images  ImageUploader
	Pricing Pricing
	Log     *logrus.Logger
}

const catalogLimit = 50

// List returns hotels matching q, or all hotels when q is empty. If the search
// index fails the database is searched instead.
func (c *HotelCatalog) List(ctx context.Context, q string) ([]models.Hotel, error) {
	q = strings.TrimSpace(q)
	db := c.DB.WithContext(ctx)

	if q != "" && c.Search != nil {
		ids, err := c.Search.Search(ctx, q, catalogLimit)
		if err == nil {
			return c.byIDs(ctx, ids)
		}
		c.Log.WithError(err).Warn("hotel search index unavailable, searching database")
	}

	var hotels []models.Hotel
	if q != "" {
		like := "%" + strings.ToLower(q) + "%"
		db = db.Where("lower(name) LIKE ? OR lower(location) LIKE ?", like, like)
	}
	err := db.Order("name ASC").Limit(catalogLimit).Find(&hotels).Error
	return hotels, err
}

// byIDs keeps the index's relevance order.
func (c *HotelCatalog) byIDs(ctx context.Context, ids []uint) ([]models.Hotel, error) {
	if len(ids) == 0 {
		return []models.Hotel{}, nil
	}
	var found []models.Hotel
	if err := c.DB.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Hotel, len(found))
	for _, h := range found {
		byID[h.ID] = h
	}
	out := make([]models.Hotel, 0, len(found))
	for _, id := range ids {
		if h, ok := byID[id]; ok {
			out = append(out, h)
		}
	}
	return out, nil
}

func (c *HotelCatalog) Get(ctx context.Context, id uint) (*models.Hotel, error) {
	var h models.Hotel
	err := c.DB.WithContext(ctx).First(&h, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

type RoomDetails struct {
	HotelID   uint        `json:"hotelID"`
	HotelName string      `json:"hotelName"`
	Room      models.Room `json:"room"`
	Plans     []Plan      `json:"plans"`
}

func (c *HotelCatalog) Room(ctx context.Context, hotelID uint, roomID string) (*RoomDetails, error) {
	h, err := c.Get(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	room, ok := h.FindRoom(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return &RoomDetails{HotelID: h.ID, HotelName: h.Name, Room: room, Plans: c.Pricing.Plans(room)}, nil
}

func validateRooms(rooms []models.Room) error {
	seen := map[string]bool{}
	for _, r := range rooms {
		if seen[r.ID] {
			return invalid("rooms", "duplicate", "room id "+r.ID+" is used twice")
		}
		seen[r.ID] = true
	}
	return nil
}

// Create stores a hotel and indexes it. Index failures are logged only.
func (c *HotelCatalog) Create(ctx context.Context, h *models.Hotel) error {
	if err := validateRooms(h.Rooms); err != nil {
		return err
	}
	if err := c.DB.WithContext(ctx).Create(h).Error; err != nil {
		return err
	}
	c.index(ctx, *h)
	return nil
}

func (c *HotelCatalog) index(ctx context.Context, h models.Hotel) {
	if c.Search == nil {
		return
	}
	if err := c.Search.Index(ctx, h); err != nil {
		c.Log.WithError(err).WithField("hotel_id", h.ID).Warn("could not index hotel")
	}
}

func (c *HotelCatalog) Reindex(ctx context.Context, id uint) error {
	if c.Search == nil {
		return errors.New("search index is not configured")
	}
	h, err := c.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.Search.Index(ctx, *h)
}

func (c *HotelCatalog) ReindexAll(ctx context.Context) (int, error) {
	if c.Search == nil {
		return 0, errors.New("search index is not configured")
	}
	var hotels []models.Hotel
	if err := c.DB.WithContext(ctx).Find(&hotels).Error; err != nil {
		return 0, err
	}
	for _, h := range hotels {
		if err := c.Search.Index(ctx, h); err != nil {
			return 0, fmt.Errorf("index hotel %d: %w", h.ID, err)
		}
	}
	return len(hotels), nil
}

// updateRooms rewrites a hotel's embedded rooms under a row lock.
func (c *HotelCatalog) updateRooms(ctx context.Context, hotelID uint, mutate func(rooms []models.Room) error) (*models.Hotel, error) {
	var h models.Hotel
	err := c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&h, hotelID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHotelNotFound
		}
		if err != nil {
			return err
		}
		if err := mutate(h.Rooms); err != nil {
			return err
		}
		return tx.Model(&h).Update("rooms", h.Rooms).Error
	})
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// SetTypePrices sets the base nightly price of every room of a type. A zero
// price leaves that type unchanged. Existing bookings keep the price they
// were made at.
func (c *HotelCatalog) SetTypePrices(ctx context.Context, hotelID uint, roomPrice, dormPrice int64) (*models.Hotel, error) {
	if roomPrice < 0 || dormPrice < 0 {
		return nil, invalid("price", "negative", "prices cannot be negative")
	}
	return c.updateRooms(ctx, hotelID, func(rooms []models.Room) error {
		for i := range rooms {
			switch {
			case rooms[i].Type == models.RoomTypeDorm && dormPrice > 0:
				rooms[i].Price = dormPrice
			case rooms[i].Type == models.RoomTypeRoom && roomPrice > 0:
				rooms[i].Price = roomPrice
			}
		}
		return nil
	})
}

// UpdateAllPricing applies SetTypePrices to every hotel.
func (c *HotelCatalog) UpdateAllPricing(ctx context.Context, roomPrice, dormPrice int64) (int, error) {
	var ids []uint
	if err := c.DB.WithContext(ctx).Model(&models.Hotel{}).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	for _, id := range ids {
		h, err := c.SetTypePrices(ctx, id, roomPrice, dormPrice)
		if err != nil {
			return 0, err
		}
		c.Log.WithField("hotel", h.Name).Info("updated pricing")
	}
	return len(ids), nil
}

// AddRoomImage uploads an image and appends its URL to the room.
func (c *HotelCatalog) AddRoomImage(ctx context.Context, hotelID uint, roomID, base64Image string) (string, error) {
	h, err := c.Get(ctx, hotelID)
	if err != nil {
		return "", err
	}
	if _, ok := h.FindRoom(roomID); !ok {
		return "", invalid("roomId", "not_found", "room "+roomID+" does not exist")
	}
	if c.Images == nil {
		return "", errors.New("image storage is not configured")
	}

	url, err := c.Images.UploadBase64(ctx, base64Image, fmt.Sprintf("hotel-%d-room-%s-%s", hotelID, roomID, uuid.NewString()[:8]))
	if err != nil {
		return "", err
	}
	_, err = c.updateRooms(ctx, hotelID, func(rooms []models.Room) error {
		for i := range rooms {
			if rooms[i].ID == roomID {
				rooms[i].Images = append(rooms[i].Images, url)
				return nil
			}
		}
		return invalid("roomId", "not_found", "room "+roomID+" does not exist")
	})
	if err != nil {
		return "", err
	}
	return url, nil
}

// RemoveRoomImage drops url from the room and then deletes the stored file.
// A failed file delete is logged; the room no longer shows the image either way.
func (c *HotelCatalog) RemoveRoomImage(ctx context.Context, hotelID uint, roomID, url string) error {
	_, err := c.updateRooms(ctx, hotelID, func(rooms []models.Room) error {
		for i := range rooms {
			if rooms[i].ID != roomID {
				continue
			}
			for j, img := range rooms[i].Images {
				if img == url {
					rooms[i].Images = append(rooms[i].Images[:j:j], rooms[i].Images[j+1:]...)
					return nil
				}
			}
			return invalid("url", "not_found", "room "+roomID+" has no such image")
		}
		return invalid("roomId", "not_found", "room "+roomID+" does not exist")
	})
	if err != nil {
		return err
	}
	if c.Images == nil {
		return nil
	}
	if err := c.Images.Delete(ctx, url); err != nil {
		c.Log.WithError(err).WithFields(logrus.Fields{"hotel_id": hotelID, "room": roomID}).Warn("could not delete room image file")
	}
	return nil
}
