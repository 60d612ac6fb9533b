package scripts

import (
	"govstay-server/config"
	"govstay-server/routes"
	"govstay-server/services"
	"govstay-server/storage"
	"govstay-server/utils"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Runtime is the wired set of stores and services shared by the server and
// the operator commands.
type Runtime struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	Redis       *redis.Client
	Search      *storage.HotelSearch
	MirrorStore *services.GormMirrorStore
	Mirror      *services.Mirror
	Bookings    *services.BookingService
	Catalog     *services.HotelCatalog
}

// Bootstrap connects every configured store. Redis and Elasticsearch are
// optional: without them bookings lock in memory and the catalog searches
// the database.
func Bootstrap(cfg *config.Config) (*Runtime, error) {
	log := utils.ConfigureLogger(cfg.Log.Level, cfg.Log.Format)
	utils.ConfigureTokens(cfg.Auth.AccessTokenSecret, cfg.Auth.RefreshTokenSecret)

	db, err := storage.InitializeDB(cfg.Database.DSN, cfg.Database.Migrate, log)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Config: cfg, Log: log, DB: db}
	rt.Redis = storage.InitializeRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)

	rt.Search, err = storage.InitializeSearch(cfg.Elastic.URLs, cfg.Elastic.Index, cfg.Elastic.Debug)
	if err != nil {
		log.WithError(err).Warn("elasticsearch unavailable, catalog search uses the database")
		rt.Search = nil
	}

	pricing := services.Pricing{BreakfastSurcharge: cfg.Booking.BreakfastSurcharge}
	rt.MirrorStore = &services.GormMirrorStore{DB: db}
	rt.Mirror = &services.Mirror{Store: rt.MirrorStore, Log: log}

	var locker services.RoomLocker = services.NewMemoryRoomLocker()
	if rt.Redis != nil {
		locker = &services.RedisRoomLocker{Client: rt.Redis, TTL: cfg.Booking.LockTTL}
	} else {
		log.Warn("redis not configured, booking locks are local to this process")
	}

	rt.Bookings = &services.BookingService{
		DB:       db,
		Locker:   locker,
		Pricing:  pricing,
		Log:      log,
		Location: cfg.Location(),
		LockWait: cfg.Booking.LockTTL,
	}

	rt.Catalog = &services.HotelCatalog{DB: db, Pricing: pricing, Log: log}
	if rt.Search != nil {
		rt.Catalog.Search = rt.Search
	}
	images := &storage.ImageStore{
		CloudName: cfg.Cloudinary.CloudName,
		APIKey:    cfg.Cloudinary.APIKey,
		APISecret: cfg.Cloudinary.APISecret,
		Folder:    cfg.Cloudinary.Folder,
	}
	if images.Enabled() {
		rt.Catalog.Images = images
	}
	return rt, nil
}

// Routes returns the handler wiring for this runtime.
func (rt *Runtime) Routes() routes.Services {
	return routes.Services{Bookings: rt.Bookings, Catalog: rt.Catalog, Mirror: rt.MirrorStore}
}

func (rt *Runtime) Close() {
	if rt.Redis != nil {
		rt.Redis.Close()
	}
	if sqlDB, err := rt.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
