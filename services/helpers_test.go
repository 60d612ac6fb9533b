package services

import (
	"io"
	"testing"

	"govstay-server/models"
	"govstay-server/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := storage.Open("sqlite:file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database alive and
	// serialises writers the way row locks would
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, storage.Migrate(db))
	return db
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func seedHotel(t *testing.T, db *gorm.DB) models.Hotel {
	t.Helper()
	h := models.Hotel{Name: "Goa Sadan", Location: "New Delhi", Rooms: testRooms()}
	require.NoError(t, db.Create(&h).Error)
	return h
}
