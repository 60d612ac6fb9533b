package services

import (
	"context"
	"sync"
	"time"

	"govstay-server/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingChange is published after a booking write commits. After is nil for
// deletes; Before is nil for creates.
type BookingChange struct {
	BookingID uint
	Before    *models.Booking
	After     *models.Booking
}

type MirrorStore interface {
	Upsert(ctx context.Context, p models.PublicBooking) error
	Delete(ctx context.Context, hotelID, bookingID uint) error
}

// GormMirrorStore keeps the public_bookings table.
type GormMirrorStore struct {
	DB *gorm.DB
}

func (s *GormMirrorStore) Upsert(ctx context.Context, p models.PublicBooking) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "booking_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"hotel_id", "check_in", "check_out", "selected_rooms", "updated_at"}),
	}).Create(&p).Error
}

// Delete is idempotent; a missing mirror is not an error.
func (s *GormMirrorStore) Delete(ctx context.Context, hotelID, bookingID uint) error {
	return s.DB.WithContext(ctx).
		Where("booking_id = ? AND hotel_id = ?", bookingID, hotelID).
		Delete(&models.PublicBooking{}).Error
}

func (s *GormMirrorStore) ListByHotel(ctx context.Context, hotelID uint) ([]models.PublicBooking, error) {
	var out []models.PublicBooking
	err := s.DB.WithContext(ctx).Where("hotel_id = ?", hotelID).Order("check_in ASC").Find(&out).Error
	return out, err
}

type MirrorOutcome string

const (
	MirrorUpserted MirrorOutcome = "upserted"
	MirrorDeleted  MirrorOutcome = "deleted"
	MirrorSkipped  MirrorOutcome = "skipped"
	MirrorFailed   MirrorOutcome = "failed"
)

// Mirror projects bookings into their PII-free public form. It never returns
// errors to the writer: failures are logged and reported as MirrorFailed.
type Mirror struct {
	Store MirrorStore
	Log   *logrus.Logger
	Now   func() time.Time
}

func (m *Mirror) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Mirror) Apply(ctx context.Context, ch BookingChange) MirrorOutcome {
	log := m.Log.WithField("booking_id", ch.BookingID)

	if ch.After == nil {
		if ch.Before == nil || ch.Before.HotelID == 0 {
			return MirrorSkipped
		}
		if err := m.Store.Delete(ctx, ch.Before.HotelID, ch.BookingID); err != nil {
			log.WithError(err).Error("error deleting public booking mirror")
			return MirrorFailed
		}
		log.WithField("hotel_id", ch.Before.HotelID).Info("deleted public booking mirror")
		return MirrorDeleted
	}

	after := ch.After
	if after.HotelID == 0 || after.CheckIn == "" || after.CheckOut == "" || after.SelectedRooms == nil {
		log.Info("skipping mirror: missing required fields")
		return MirrorSkipped
	}

	if ch.Before != nil && ch.Before.HotelID != 0 && ch.Before.HotelID != after.HotelID {
		if err := m.Store.Delete(ctx, ch.Before.HotelID, ch.BookingID); err != nil {
			log.WithError(err).WithField("hotel_id", ch.Before.HotelID).Error("error deleting stale public booking mirror")
			return MirrorFailed
		}
	}

	p := models.PublicBooking{
		BookingID:     ch.BookingID,
		HotelID:       after.HotelID,
		CheckIn:       after.CheckIn,
		CheckOut:      after.CheckOut,
		SelectedRooms: after.SelectedRooms,
		UpdatedAt:     m.now(),
	}
	if err := m.Store.Upsert(ctx, p); err != nil {
		log.WithError(err).WithField("hotel_id", after.HotelID).Error("error mirroring booking")
		return MirrorFailed
	}
	log.WithFields(logrus.Fields{"hotel_id": after.HotelID, "rooms": []string(after.SelectedRooms)}).Debug("mirrored booking")
	return MirrorUpserted
}

// Resync rebuilds every mirror from the bookings table and removes mirrors
// whose booking no longer exists.
func (m *Mirror) Resync(ctx context.Context, db *gorm.DB) (upserted, removed int, err error) {
	var batch []models.Booking
	res := db.WithContext(ctx).FindInBatches(&batch, 200, func(tx *gorm.DB, _ int) error {
		for i := range batch {
			if m.Apply(ctx, BookingChange{BookingID: batch[i].ID, After: &batch[i]}) == MirrorUpserted {
				upserted++
			}
		}
		return nil
	})
	if res.Error != nil {
		return upserted, removed, res.Error
	}

	var orphans []models.PublicBooking
	if err := db.WithContext(ctx).
		Where("booking_id NOT IN (?)", db.Model(&models.Booking{}).Select("id")).
		Find(&orphans).Error; err != nil {
		return upserted, removed, err
	}
	for _, o := range orphans {
		if m.Apply(ctx, BookingChange{BookingID: o.BookingID, Before: &models.Booking{ID: o.BookingID, HotelID: o.HotelID}}) == MirrorDeleted {
			removed++
		}
	}
	return upserted, removed, nil
}

// MirrorDispatcher applies changes on a fixed set of workers. Changes for one
// booking always land on the same worker, so they apply in publish order.
type MirrorDispatcher struct {
	mirror *Mirror
	shards []chan BookingChange
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewMirrorDispatcher(m *Mirror, workers, queueSize int) *MirrorDispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &MirrorDispatcher{mirror: m, shards: make([]chan BookingChange, workers)}
	for i := range d.shards {
		d.shards[i] = make(chan BookingChange, queueSize)
	}
	return d
}

func (d *MirrorDispatcher) Start(ctx context.Context) {
	for _, ch := range d.shards {
		d.wg.Add(1)
		go func(in <-chan BookingChange) {
			defer d.wg.Done()
			for change := range in {
				d.mirror.Apply(ctx, change)
			}
		}(ch)
	}
}

// Publish queues a change, blocking while the shard's queue is full.
func (d *MirrorDispatcher) Publish(change BookingChange) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.mirror.Log.WithField("booking_id", change.BookingID).Warn("mirror dispatcher closed, change dropped")
		return
	}
	d.shards[int(change.BookingID%uint(len(d.shards)))] <- change
}

// Close stops accepting changes and waits for queued ones to apply.
func (d *MirrorDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.shards {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
