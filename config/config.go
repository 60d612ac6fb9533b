package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const defaultConfigFile = "./config.yaml"

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
	// run AutoMigrate on start-up
	Migrate bool `yaml:"migrate"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ElasticConfig struct {
	URLs  []string `yaml:"urls"`
	Index string   `yaml:"index"`
	Debug bool     `yaml:"debug"`
}

type AuthConfig struct {
	AccessTokenSecret  string `yaml:"access_token_secret"`
	RefreshTokenSecret string `yaml:"refresh_token_secret"`
}

type CloudinaryConfig struct {
	CloudName string `yaml:"cloud_name"`
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Folder    string `yaml:"folder"`
}

type BookingConfig struct {
	BreakfastSurcharge int64         `yaml:"breakfast_surcharge"`
	LockTTL            time.Duration `yaml:"lock_ttl"`
	MirrorWorkers      int           `yaml:"mirror_workers"`
	MirrorQueueSize    int           `yaml:"mirror_queue_size"`
	Timezone           string        `yaml:"timezone"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

type Config struct {
	Listen         string           `yaml:"listen"`
	RequestTimeout time.Duration    `yaml:"request_timeout"`
	Database       DatabaseConfig   `yaml:"database"`
	Redis          RedisConfig      `yaml:"redis"`
	Elastic        ElasticConfig    `yaml:"elastic"`
	Auth           AuthConfig       `yaml:"auth"`
	Cloudinary     CloudinaryConfig `yaml:"cloudinary"`
	Booking        BookingConfig    `yaml:"booking"`
	Log            LogConfig        `yaml:"log"`
}

// Default returns a configuration usable for local development.
func Default() *Config {
	return &Config{
		Listen:         ":8080",
		RequestTimeout: 10 * time.Second,
		Database:       DatabaseConfig{Migrate: true},
		Elastic:        ElasticConfig{Index: "hotels"},
		Booking: BookingConfig{
			BreakfastSurcharge: 400,
			LockTTL:            10 * time.Second,
			MirrorWorkers:      4,
			MirrorQueueSize:    256,
			Timezone:           "Asia/Kolkata",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Verify filters out evident errors.
func (c *Config) Verify() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("config: verify error: DB_CONNECTION_STRING is required")
	}
	if c.Booking.MirrorWorkers <= 0 {
		return fmt.Errorf("config: verify error: mirror_workers must be positive")
	}
	if c.Booking.MirrorQueueSize <= 0 {
		return fmt.Errorf("config: verify error: mirror_queue_size must be positive")
	}
	if c.Booking.LockTTL <= 0 {
		return fmt.Errorf("config: verify error: lock_ttl must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: verify error: request_timeout must be positive")
	}
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("config: verify error: timezone %q: %w", c.Booking.Timezone, err)
	}
	return nil
}

// Location is the zone used to decide what "today" is for bookings.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Booking.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load reads defaults, then the YAML file (GOVSTAY_CONFIG or ./config.yaml, if
// present), then environment overrides, and verifies the result.
func Load() (*Config, error) {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		_ = godotenv.Load()
	}

	cfg := Default()

	path := os.Getenv("GOVSTAY_CONFIG")
	if path == "" {
		path = defaultConfigFile
	}
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(bytes, c); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.Listen, "LISTEN_ADDR")
	if port := os.Getenv("PORT"); port != "" {
		c.Listen = ":" + port
	}
	setDuration(&c.RequestTimeout, "REQUEST_TIMEOUT")

	setString(&c.Database.DSN, "DB_CONNECTION_STRING")
	setBool(&c.Database.Migrate, "DB_MIGRATE")

	setString(&c.Redis.Addr, "REDIS_URL")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setInt(&c.Redis.DB, "REDIS_DB")

	if urls := os.Getenv("ELASTIC_URLS"); urls != "" {
		c.Elastic.URLs = strings.Split(urls, ",")
	}
	setString(&c.Elastic.Index, "ELASTIC_INDEX")

	setString(&c.Auth.AccessTokenSecret, "ACCESS_TOKEN_SECRET")
	setString(&c.Auth.RefreshTokenSecret, "REFRESH_TOKEN_SECRET")

	setString(&c.Cloudinary.CloudName, "CLOUDINARY_CLOUD_NAME")
	setString(&c.Cloudinary.APIKey, "CLOUDINARY_API_KEY")
	setString(&c.Cloudinary.APISecret, "CLOUDINARY_API_SECRET")
	setString(&c.Cloudinary.Folder, "CLOUDINARY_FOLDER")

	if v, err := strconv.ParseInt(os.Getenv("BREAKFAST_SURCHARGE"), 10, 64); err == nil {
		c.Booking.BreakfastSurcharge = v
	}
	setDuration(&c.Booking.LockTTL, "BOOKING_LOCK_TTL")
	setInt(&c.Booking.MirrorWorkers, "MIRROR_WORKERS")
	setInt(&c.Booking.MirrorQueueSize, "MIRROR_QUEUE_SIZE")
	setString(&c.Booking.Timezone, "BOOKING_TIMEZONE")

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		*dst = v
	}
}
