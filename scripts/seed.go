package scripts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"govstay-server/models"
	"govstay-server/services"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type sampleHotel struct {
	Name, Location, Description string
	Amenities                   []string
	RoomsPerFloor               int
	DormsPerFloor               int
}

var sampleHotels = []sampleHotel{
	{
		Name:          "Goa Sadan",
		Location:      "Chanakyapuri, New Delhi",
		Description:   "State guest house for officers on duty in the capital.",
		Amenities:     []string{"Wi-Fi", "Canteen", "Parking"},
		RoomsPerFloor: 4,
		DormsPerFloor: 1,
	},
	{
		Name:          "Goa Niwas",
		Location:      "Vashi, Navi Mumbai",
		Description:   "Transit accommodation near the state liaison office.",
		Amenities:     []string{"Wi-Fi", "Laundry"},
		RoomsPerFloor: 3,
		DormsPerFloor: 2,
	},
}

func sampleRooms(s sampleHotel) []models.Room {
	var rooms []models.Room
	for floor := 1; floor <= 2; floor++ {
		for i := 1; i <= s.RoomsPerFloor; i++ {
			rooms = append(rooms, models.Room{
				ID: fmt.Sprintf("R%d%02d", floor, i), Number: fmt.Sprintf("%d%02d", floor, i),
				Floor: floor, Type: models.RoomTypeRoom, Price: services.DefaultRoomPrice,
				Bed: "Double", Capacity: 2,
			})
		}
		for i := 1; i <= s.DormsPerFloor; i++ {
			rooms = append(rooms, models.Room{
				ID: fmt.Sprintf("D%d%02d", floor, i), Number: fmt.Sprintf("D%d%02d", floor, i),
				Floor: floor, Type: models.RoomTypeDorm, Price: services.DefaultDormPrice,
				Bed: "Bunk", Capacity: 6,
			})
		}
	}
	return rooms
}

// SeedHotels creates the sample hotels that do not exist yet.
func SeedHotels(ctx context.Context, catalog *services.HotelCatalog) (int, error) {
	created := 0
	for _, s := range sampleHotels {
		var n int64
		if err := catalog.DB.WithContext(ctx).Model(&models.Hotel{}).Where("name = ?", s.Name).Count(&n).Error; err != nil {
			return created, err
		}
		if n > 0 {
			continue
		}
		h := models.Hotel{
			Name:        s.Name,
			Location:    s.Location,
			Description: s.Description,
			Amenities:   s.Amenities,
			Rooms:       sampleRooms(s),
		}
		if err := catalog.Create(ctx, &h); err != nil {
			return created, fmt.Errorf("seed %s: %w", s.Name, err)
		}
		created++
	}
	return created, nil
}

// SetupAdmin creates an admin account, or promotes an existing account with
// the same email and resets its password.
func SetupAdmin(ctx context.Context, db *gorm.DB, email, password, firstName, lastName string) (models.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return models.User{}, false, errors.New("an email and a password of at least 8 characters are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, false, err
	}

	var user models.User
	res := db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&user)
	if res.Error != nil {
		return models.User{}, false, res.Error
	}
	if res.RowsAffected > 0 {
		err := db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
			"role":     models.RoleAdmin,
			"password": string(hash),
		}).Error
		return user, false, err
	}

	user = models.User{FirstName: firstName, LastName: lastName, Email: email, Password: string(hash), Role: models.RoleAdmin}
	return user, true, db.WithContext(ctx).Create(&user).Error
}
