package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"govstay-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type captured struct {
	mu      sync.Mutex
	changes []BookingChange
}

func (c *captured) Publish(ch BookingChange) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, ch)
}

func (c *captured) last() BookingChange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changes[len(c.changes)-1]
}

func newTestService(t *testing.T) (*BookingService, models.Hotel, *captured) {
	db := newTestDB(t)
	hotel := seedHotel(t, db)
	changes := &captured{}
	svc := &BookingService{
		DB:       db,
		Locker:   NewMemoryRoomLocker(),
		Pricing:  Pricing{BreakfastSurcharge: 400},
		Changes:  changes,
		Log:      quietLogger(),
		Location: time.UTC,
		LockWait: time.Second,
		Now:      func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) },
	}
	return svc, hotel, changes
}

func requestFor(hotel models.Hotel, rooms []string, in, out string) BookingRequest {
	req := validRequest()
	req.HotelID = hotel.ID
	req.SelectedRooms = rooms
	req.CheckIn = in
	req.CheckOut = out
	return req
}

func TestCreateBooking(t *testing.T) {
	svc, hotel, changes := newTestService(t)
	ctx := context.Background()

	req := requestFor(hotel, []string{"R1", "R2"}, "2024-06-10", "2024-06-12")
	req.PricingPlan = PlanWithBreakfast
	view, err := svc.Create(ctx, 5, req)
	require.NoError(t, err)

	assert.NotZero(t, view.ID)
	assert.Equal(t, models.StatusActive, view.Status)
	assert.Equal(t, "Goa Sadan", view.HotelName)
	assert.Equal(t, models.RoomTypeRoom, view.RoomType)
	assert.Equal(t, models.PricingPlan{Label: PlanWithBreakfast, Price: 1400}, view.Plan)
	assert.True(t, view.GovtServant)
	assert.Regexp(t, `^GS-20240601-[0-9A-F]{4}$`, view.ReceiptNo)

	var nights int64
	require.NoError(t, svc.DB.Model(&models.RoomNight{}).Where("booking_id = ?", view.ID).Count(&nights).Error)
	assert.Equal(t, int64(4), nights)

	require.Len(t, changes.changes, 1)
	assert.Nil(t, changes.last().Before)
	assert.Equal(t, view.ID, changes.last().After.ID)

	a, err := svc.Availability(ctx, hotel.ID, "2024-06-11", "2024-06-13")
	require.NoError(t, err)
	assert.Equal(t, []string{"R1", "R2"}, a.Occupied)
}

func TestCreateRejectsInvalidWithoutWriting(t *testing.T) {
	svc, hotel, changes := newTestService(t)

	req := requestFor(hotel, []string{"R1"}, "2024-05-20", "2024-05-22")
	_, err := svc.Create(context.Background(), 5, req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "in_past", verr.Code)

	req = requestFor(hotel, []string{"R1"}, "2024-06-10", "2024-06-12")
	req.PricingPlan = "Penthouse"
	_, err = svc.Create(context.Background(), 5, req)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unknown_plan", verr.Code)

	_, err = svc.Create(context.Background(), 5, requestFor(models.Hotel{Model: gorm.Model{ID: 999}}, []string{"R1"}, "2024-06-10", "2024-06-12"))
	assert.ErrorIs(t, err, ErrHotelNotFound)

	var count int64
	svc.DB.Model(&models.Booking{}).Count(&count)
	assert.Zero(t, count)
	assert.Empty(t, changes.changes)
}

func TestCreateConflictAndBackToBack(t *testing.T) {
	svc, hotel, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 5, requestFor(hotel, []string{"R1"}, "2024-06-10", "2024-06-12"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, 6, requestFor(hotel, []string{"R2", "R1"}, "2024-06-11", "2024-06-13"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, []string{"R1"}, conflict.Rooms)

	_, err = svc.Create(ctx, 6, requestFor(hotel, []string{"R1"}, "2024-06-12", "2024-06-14"))
	assert.NoError(t, err, "check-out day is free for the next guest")

	var count int64
	svc.DB.Model(&models.Booking{}).Count(&count)
	assert.Equal(t, int64(2), count, "rejected booking left nothing behind")
}

func TestConcurrentSubmissionsFirstWriterWins(t *testing.T) {
	svc, hotel, _ := newTestService(t)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(user uint) {
			defer wg.Done()
			_, err := svc.Create(ctx, user, requestFor(hotel, []string{"R3"}, "2024-06-10", "2024-06-15"))
			results <- err
		}(uint(i + 1))
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		var conflict *ConflictError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &conflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, writers-1, conflicts)
}

func TestRoomNightIndexRejectsDoubleBooking(t *testing.T) {
	svc, hotel, _ := newTestService(t)
	svc.Locker = nil

	// a night already held without a visible booking row
	require.NoError(t, svc.DB.Create(&models.RoomNight{HotelID: hotel.ID, RoomID: "R1", Night: "2024-06-11", BookingID: 77}).Error)

	_, err := svc.Create(context.Background(), 5, requestFor(hotel, []string{"R1"}, "2024-06-10", "2024-06-12"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	var count int64
	svc.DB.Model(&models.Booking{}).Count(&count)
	assert.Zero(t, count, "booking row rolled back with its nights")
}

func TestCancelReleasesRooms(t *testing.T) {
	svc, hotel, changes := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, 5, requestFor(hotel, []string{"R1"}, "2024-06-10", "2024-06-12"))
	require.NoError(t, err)

	before, after, err := svc.Cancel(ctx, view.ID, "duty change")
	require.NoError(t, err)
	assert.False(t, before.Cancelled)
	assert.True(t, after.Cancelled)
	assert.Equal(t, "duty change", after.CancellationReason)
	assert.True(t, changes.last().After.Cancelled)

	_, err = svc.Create(ctx, 6, requestFor(hotel, []string{"R1"}, "2024-06-10", "2024-06-12"))
	assert.NoError(t, err)

	list, err := svc.ForUser(ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusCancelled, list[0].Status)
}

func TestRequestCancellationOnlyFlags(t *testing.T) {
	svc, hotel, _ := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, 5, requestFor(hotel, []string{"R1"}, "2024-06-10", "2024-06-12"))
	require.NoError(t, err)

	_, err = svc.RequestCancellation(ctx, 6, view.ID, "")
	assert.ErrorIs(t, err, ErrForbidden)

	flagged, err := svc.RequestCancellation(ctx, 5, view.ID, "plans changed")
	require.NoError(t, err)
	assert.True(t, flagged.CancellationRequested)
	assert.False(t, flagged.Cancelled)
	assert.Equal(t, models.StatusActive, flagged.Status)

	a, err := svc.Availability(ctx, hotel.ID, "2024-06-10", "2024-06-12")
	require.NoError(t, err)
	assert.Contains(t, a.Occupied, "R1", "a request does not release the room")

	_, err = svc.RequestCancellation(ctx, 5, 9999, "")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestAdminUpdateRechecksAndMovesNights(t *testing.T) {
	svc, hotel, changes := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, 5, requestFor(hotel, []string{"R1"}, "2024-06-10", "2024-06-12"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, 6, requestFor(hotel, []string{"R2"}, "2024-06-10", "2024-06-12"))
	require.NoError(t, err)

	rooms := []string{"R1"}
	_, _, err = svc.AdminUpdate(ctx, second.ID, BookingPatch{SelectedRooms: &rooms})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)

	out := "2024-06-14"
	before, after, err := svc.AdminUpdate(ctx, first.ID, BookingPatch{CheckOut: &out})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-12", before.CheckOut)
	assert.Equal(t, "2024-06-14", after.CheckOut)
	assert.Equal(t, "2024-06-14", changes.last().After.CheckOut)

	var nights []models.RoomNight
	require.NoError(t, svc.DB.Where("booking_id = ?", first.ID).Order("night").Find(&nights).Error)
	require.Len(t, nights, 4)
	assert.Equal(t, "2024-06-13", nights[3].Night)

	name := "Ravi Kamat"
	_, after, err = svc.AdminUpdate(ctx, second.ID, BookingPatch{ApplicantName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kamat", after.ApplicantName)

	bad := "2024-06-09"
	_, _, err = svc.AdminUpdate(ctx, second.ID, BookingPatch{CheckOut: &bad})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid_range", verr.Code)

	twice := []string{"R2", "R2"}
	_, _, err = svc.AdminUpdate(ctx, second.ID, BookingPatch{SelectedRooms: &twice})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "selectedRooms", verr.Field)
	assert.Equal(t, "duplicate", verr.Code)

	var nightCount int64
	require.NoError(t, svc.DB.Model(&models.RoomNight{}).Where("booking_id = ?", second.ID).Count(&nightCount).Error)
	assert.Equal(t, int64(2), nightCount, "rejected edit kept the original nights")
}

func TestDeleteBooking(t *testing.T) {
	svc, hotel, changes := newTestService(t)
	ctx := context.Background()

	view, err := svc.Create(ctx, 5, requestFor(hotel, []string{"R1"}, "2024-06-10", "2024-06-12"))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, deleted.ID)
	assert.Nil(t, changes.last().After)

	var nights int64
	svc.DB.Model(&models.RoomNight{}).Count(&nights)
	assert.Zero(t, nights)

	_, err = svc.Delete(ctx, view.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListAndStats(t *testing.T) {
	svc, hotel, _ := newTestService(t)
	ctx := context.Background()

	active, err := svc.Create(ctx, 5, requestFor(hotel, []string{"R1"}, "2024-06-01", "2024-06-03"))
	require.NoError(t, err)
	cancelled, err := svc.Create(ctx, 5, requestFor(hotel, []string{"R2"}, "2024-06-10", "2024-06-12"))
	require.NoError(t, err)
	_, _, err = svc.Cancel(ctx, cancelled.ID, "")
	require.NoError(t, err)
	pending, err := svc.Create(ctx, 6, requestFor(hotel, []string{"R3"}, "2024-06-20", "2024-06-22"))
	require.NoError(t, err)
	_, err = svc.RequestCancellation(ctx, 6, pending.ID, "")
	require.NoError(t, err)

	// move the clock past the first stay
	svc.Now = func() time.Time { return time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC) }

	items, total, err := svc.List(ctx, BookingFilter{Status: models.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, active.ID, items[0].ID)
	assert.Equal(t, models.StatusCompleted, items[0].Status)

	items, total, err = svc.List(ctx, BookingFilter{Query: "GOA", Date: "2024-06-22"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, pending.ID, items[0].ID)

	_, total, err = svc.List(ctx, BookingFilter{HotelID: hotel.ID, Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Active: 1, Completed: 1, Cancelled: 1, PendingCancellations: 1, CheckInsToday: 0}, st)
}

func TestAvailabilityStates(t *testing.T) {
	svc, hotel, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Availability(ctx, hotel.ID, "2024-06-12", "2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, StateInvalidRange, a.State)
	assert.Zero(t, a.Available)

	_, err = svc.Availability(ctx, 999, "2024-06-10", "2024-06-12")
	assert.ErrorIs(t, err, ErrHotelNotFound)

	require.NoError(t, svc.DB.Migrator().DropTable(&models.Booking{}))
	a, err = svc.Availability(ctx, hotel.ID, "2024-06-10", "2024-06-12")
	assert.ErrorIs(t, err, ErrAvailabilityUnknown)
	assert.Equal(t, StateUnknown, a.State)
	assert.Zero(t, a.Available)
}

func TestCreateGivesUpOnBusyLock(t *testing.T) {
	svc, hotel, _ := newTestService(t)
	svc.LockWait = 50 * time.Millisecond

	unlock, err := svc.Locker.Lock(context.Background(), hotel.ID, []string{"R2"})
	require.NoError(t, err)
	defer unlock()

	_, err = svc.Create(context.Background(), 7, requestFor(hotel, []string{"R1", "R2"}, "2024-06-10", "2024-06-12"))
	assert.ErrorIs(t, err, ErrLockBusy)

	var n int64
	require.NoError(t, svc.DB.Model(&models.Booking{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateFailsWhenUserLookupFails(t *testing.T) {
	svc, hotel, changes := newTestService(t)
	require.NoError(t, svc.DB.Migrator().DropTable(&models.User{}))

	_, err := svc.Create(context.Background(), 5, requestFor(hotel, []string{"R1"}, "2024-06-10", "2024-06-12"))
	require.Error(t, err)

	var count int64
	require.NoError(t, svc.DB.Model(&models.Booking{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, changes.changes)
}

func TestPublicAvailabilityReadsMirrors(t *testing.T) {
	svc, hotel, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.DB.Create(&models.PublicBooking{
		BookingID: 41, HotelID: hotel.ID, CheckIn: "2024-06-10", CheckOut: "2024-06-12", SelectedRooms: []string{"R3"},
	}).Error)
	require.NoError(t, svc.DB.Create(&models.PublicBooking{
		BookingID: 42, HotelID: hotel.ID + 1, CheckIn: "2024-06-10", CheckOut: "2024-06-12", SelectedRooms: []string{"R1"},
	}).Error)

	a, err := svc.PublicAvailability(ctx, hotel.ID, "2024-06-11", "2024-06-13")
	require.NoError(t, err)
	assert.Equal(t, StateOK, a.State)
	assert.Equal(t, []string{"R3"}, a.Occupied)

	a, err = svc.PublicAvailability(ctx, hotel.ID, "2024-06-12", "2024-06-14")
	require.NoError(t, err)
	assert.Empty(t, a.Occupied, "check-out day is free")

	a, err = svc.PublicAvailability(ctx, hotel.ID, "2024-06-12", "2024-06-12")
	require.NoError(t, err)
	assert.Equal(t, StateInvalidRange, a.State)

	require.NoError(t, svc.DB.Migrator().DropTable(&models.PublicBooking{}))
	a, err = svc.PublicAvailability(ctx, hotel.ID, "2024-06-11", "2024-06-13")
	assert.ErrorIs(t, err, ErrAvailabilityUnknown)
	assert.Equal(t, StateUnknown, a.State)
}
