package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"govstay-server/models"
	"govstay-server/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ChangePublisher receives committed booking changes; the mirror dispatcher
// is the production implementation.
type ChangePublisher interface {
	Publish(BookingChange)
}

type BookingService struct {
	DB       *gorm.DB
	Locker   RoomLocker
	Pricing  Pricing
	Changes  ChangePublisher
	Log      *logrus.Logger
	Location *time.Location
	// LockWait bounds how long a submission waits for contended rooms.
	LockWait time.Duration
	Now      func() time.Time
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Today is the current calendar day in the configured zone.
func (s *BookingService) Today() utils.LocalDate {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return utils.DateOf(s.now().In(loc))
}

func (s *BookingService) publish(ch BookingChange) {
	if s.Changes != nil {
		s.Changes.Publish(ch)
	}
}

func (s *BookingService) Hotel(ctx context.Context, id uint) (*models.Hotel, error) {
	var h models.Hotel
	err := s.DB.WithContext(ctx).First(&h, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrHotelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// overlapping loads non-cancelled bookings of a hotel that overlap r, except
// the one being edited.
func overlapping(tx *gorm.DB, hotelID uint, r utils.DateRange, exceptID uint) ([]Occupancy, error) {
	var bookings []models.Booking
	q := tx.Select("id", "check_in", "check_out", "selected_rooms", "cancelled").
		Where("hotel_id = ? AND cancelled = ?", hotelID, false).
		Where("check_in < ? AND check_out > ?", r.CheckOut.String(), r.CheckIn.String())
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	stays := make([]Occupancy, 0, len(bookings))
	for _, b := range bookings {
		stays = append(stays, OccupancyOf(b))
	}
	return stays, nil
}

// Availability answers for one hotel and candidate range from the bookings
// table. A read failure yields the unknown state and ErrAvailabilityUnknown.
func (s *BookingService) Availability(ctx context.Context, hotelID uint, checkIn, checkOut string) (Availability, error) {
	hotel, err := s.Hotel(ctx, hotelID)
	if err != nil {
		return Availability{}, err
	}
	r := utils.NewDateRange(checkIn, checkOut)
	if !r.Valid() {
		return ComputeAvailability(hotel.Rooms, nil, r), nil
	}
	stays, err := overlapping(s.DB.WithContext(ctx), hotelID, r, 0)
	if err != nil {
		s.Log.WithError(err).WithField("hotel_id", hotelID).Error("could not load bookings for availability")
		return UnknownAvailability(hotel.Rooms, r), fmt.Errorf("%w: %v", ErrAvailabilityUnknown, err)
	}
	return ComputeAvailability(hotel.Rooms, stays, r), nil
}

// PublicAvailability answers from the PII-free mirror only. Mirrors carry no
// cancelled flag, so a cancelled stay keeps its rooms occupied here until the
// mirror row is removed.
func (s *BookingService) PublicAvailability(ctx context.Context, hotelID uint, checkIn, checkOut string) (Availability, error) {
	hotel, err := s.Hotel(ctx, hotelID)
	if err != nil {
		return Availability{}, err
	}
	r := utils.NewDateRange(checkIn, checkOut)
	if !r.Valid() {
		return ComputeAvailability(hotel.Rooms, nil, r), nil
	}
	var mirrors []models.PublicBooking
	err = s.DB.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Where("check_in < ? AND check_out > ?", r.CheckOut.String(), r.CheckIn.String()).
		Find(&mirrors).Error
	if err != nil {
		s.Log.WithError(err).WithField("hotel_id", hotelID).Error("could not load public bookings for availability")
		return UnknownAvailability(hotel.Rooms, r), fmt.Errorf("%w: %v", ErrAvailabilityUnknown, err)
	}
	stays := make([]Occupancy, 0, len(mirrors))
	for _, m := range mirrors {
		stays = append(stays, OccupancyOfMirror(m))
	}
	return ComputeAvailability(hotel.Rooms, stays, r), nil
}

func (s *BookingService) lock(ctx context.Context, hotelID uint, rooms []string) (func(), error) {
	if s.Locker == nil {
		return func() {}, nil
	}
	wait := s.LockWait
	if wait <= 0 {
		wait = 5 * time.Second
	}
	lockCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	return s.Locker.Lock(lockCtx, hotelID, rooms)
}

func roomNights(b *models.Booking) []models.RoomNight {
	r := utils.NewDateRange(b.CheckIn, b.CheckOut)
	nights := r.Nights()
	rows := make([]models.RoomNight, 0, len(nights)*len(b.SelectedRooms))
	for _, room := range b.SelectedRooms {
		for _, n := range nights {
			rows = append(rows, models.RoomNight{HotelID: b.HotelID, RoomID: room, Night: n.String(), BookingID: b.ID})
		}
	}
	return rows
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

// reserve writes b's room nights in tx after checking the bookings table.
// Either check rejects the whole transaction with a ConflictError.
func (s *BookingService) reserve(tx *gorm.DB, b *models.Booking) error {
	r := utils.NewDateRange(b.CheckIn, b.CheckOut)
	stays, err := overlapping(tx, b.HotelID, r, b.ID)
	if err != nil {
		return err
	}
	if taken := intersect(b.SelectedRooms, OccupiedRooms(stays, r)); len(taken) > 0 {
		return &ConflictError{Rooms: taken}
	}

	if err := tx.Where("booking_id = ?", b.ID).Delete(&models.RoomNight{}).Error; err != nil {
		return err
	}
	rows := roomNights(b)
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		if isDuplicateKey(err) {
			return &ConflictError{Rooms: b.SelectedRooms}
		}
		return err
	}
	return nil
}

func intersect(want, occupied []string) []string {
	var out []string
	for _, id := range want {
		for _, o := range occupied {
			if id == o {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

func newReceiptNo(t time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:4]
	return "GS-" + t.Format("20060102") + "-" + random
}

// Create validates, reserves and persists a guest booking. The first writer
// for any room night wins; later writers get a ConflictError and nothing is
// written for them.
func (s *BookingService) Create(ctx context.Context, userID uint, req BookingRequest) (*BookingView, error) {
	hotel, err := s.Hotel(ctx, req.HotelID)
	if err != nil {
		return nil, err
	}
	r, err := ValidateRequest(req, hotel, s.Today())
	if err != nil {
		return nil, err
	}
	first, _ := hotel.FindRoom(req.SelectedRooms[0])
	plan, err := s.Pricing.ResolvePlan(first, req.PricingPlan)
	if err != nil {
		return nil, err
	}

	log := s.Log.WithFields(logrus.Fields{"hotel_id": hotel.ID, "rooms": req.SelectedRooms, "range": r.String()})

	unlock, err := s.lock(ctx, hotel.ID, req.SelectedRooms)
	if err != nil {
		log.WithError(err).Warn("booking lock not acquired")
		return nil, err
	}
	defer unlock()

	var user models.User
	if err := s.DB.WithContext(ctx).Select("id", "email").Limit(1).Find(&user, userID).Error; err != nil {
		log.WithError(err).WithField("user_id", userID).Error("could not load booking user")
		return nil, err
	}

	booking := models.Booking{
		ReceiptNo:        newReceiptNo(s.now().In(s.location())),
		UserID:           userID,
		UserEmail:        user.Email,
		HotelID:          hotel.ID,
		HotelName:        hotel.Name,
		RoomType:         first.Type,
		SelectedRooms:    req.SelectedRooms,
		CheckIn:          r.CheckIn.String(),
		CheckOut:         r.CheckOut.String(),
		Guests:           req.Guests,
		GuestNames:       req.GuestNames,
		ApplicantName:    strings.TrimSpace(req.ApplicantName),
		ApplicantAddress: strings.TrimSpace(req.ApplicantAddress),
		GovtServant:      req.GovtServant == "yes",
		Purpose:          req.Purpose,
		Plan:             models.PricingPlan{Label: plan.Label, Price: plan.Price},
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}
		return s.reserve(tx, &booking)
	})
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			log.WithField("taken", conflict.Rooms).Info("booking rejected: rooms no longer available")
		} else {
			log.WithError(err).Error("booking write failed")
		}
		return nil, err
	}

	log.WithField("booking_id", booking.ID).Info("booking created")
	s.publish(BookingChange{BookingID: booking.ID, After: &booking})
	view := NewBookingView(booking, s.Today())
	return &view, nil
}

func (s *BookingService) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

func (s *BookingService) Get(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	err := s.DB.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetFor returns a booking its owner or an admin may see.
func (s *BookingService) GetFor(ctx context.Context, userID uint, admin bool, id uint) (*models.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && b.UserID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

// ForUser lists a user's bookings, newest first.
func (s *BookingService) ForUser(ctx context.Context, userID uint) ([]BookingView, error) {
	var bookings []models.Booking
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return NewBookingViews(bookings, s.Today()), nil
}

// RequestCancellation flags a booking for the admin; it does not cancel it.
func (s *BookingService) RequestCancellation(ctx context.Context, userID, id uint, reason string) (*BookingView, error) {
	b, err := s.GetFor(ctx, userID, false, id)
	if err != nil {
		return nil, err
	}
	if b.Cancelled {
		return nil, invalid("cancelled", "already_cancelled", "booking is already cancelled")
	}
	before := *b
	b.CancellationRequested = true
	b.CancellationReason = strings.TrimSpace(reason)
	if err := s.DB.WithContext(ctx).Save(b).Error; err != nil {
		return nil, err
	}
	s.Log.WithField("booking_id", b.ID).Info("cancellation requested")
	s.publish(BookingChange{BookingID: b.ID, Before: &before, After: b})
	view := NewBookingView(*b, s.Today())
	return &view, nil
}

// BookingPatch holds the fields an admin may change; nil means unchanged.
type BookingPatch struct {
	HotelID          *uint     `json:"hotelID"`
	CheckIn          *string   `json:"checkIn"`
	CheckOut         *string   `json:"checkOut"`
	SelectedRooms    *[]string `json:"selectedRooms"`
	Guests           *int      `json:"guests"`
	GuestNames       *[]string `json:"guestNames"`
	ApplicantName    *string   `json:"applicantName"`
	ApplicantAddress *string   `json:"applicantAddress"`
	GovtServant      *bool     `json:"govtServant"`
	Purpose          *string   `json:"purpose"`
}

func (p BookingPatch) movesStay() bool {
	return p.HotelID != nil || p.CheckIn != nil || p.CheckOut != nil || p.SelectedRooms != nil
}

// AdminUpdate edits a booking. A change of hotel, dates or rooms is re-checked
// against every other booking and its room nights are replaced atomically.
func (s *BookingService) AdminUpdate(ctx context.Context, id uint, patch BookingPatch) (before, after *models.Booking, err error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	prev := *current
	b := *current

	if patch.HotelID != nil {
		b.HotelID = *patch.HotelID
	}
	if patch.CheckIn != nil {
		b.CheckIn = *patch.CheckIn
	}
	if patch.CheckOut != nil {
		b.CheckOut = *patch.CheckOut
	}
	if patch.SelectedRooms != nil {
		b.SelectedRooms = *patch.SelectedRooms
	}
	if patch.Guests != nil {
		b.Guests = *patch.Guests
	}
	if patch.GuestNames != nil {
		b.GuestNames = *patch.GuestNames
	}
	if patch.ApplicantName != nil {
		b.ApplicantName = strings.TrimSpace(*patch.ApplicantName)
	}
	if patch.ApplicantAddress != nil {
		b.ApplicantAddress = strings.TrimSpace(*patch.ApplicantAddress)
	}
	if patch.GovtServant != nil {
		b.GovtServant = *patch.GovtServant
	}
	if patch.Purpose != nil {
		b.Purpose = *patch.Purpose
	}

	if err := validatePatched(&b); err != nil {
		return nil, nil, err
	}

	if patch.movesStay() && !b.Cancelled {
		hotel, err := s.Hotel(ctx, b.HotelID)
		if err != nil {
			return nil, nil, err
		}
		for _, room := range b.SelectedRooms {
			if _, ok := hotel.FindRoom(room); !ok {
				return nil, nil, invalid("selectedRooms", "room_not_bookable", "room "+room+" is no longer bookable")
			}
		}
		b.HotelName = hotel.Name

		unlock, err := s.lock(ctx, b.HotelID, b.SelectedRooms)
		if err != nil {
			return nil, nil, err
		}
		defer unlock()
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		if patch.movesStay() && !b.Cancelled {
			return s.reserve(tx, &b)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.Log.WithField("booking_id", b.ID).Info("booking updated by admin")
	s.publish(BookingChange{BookingID: b.ID, Before: &prev, After: &b})
	return &prev, &b, nil
}

func validatePatched(b *models.Booking) error {
	r := utils.NewDateRange(b.CheckIn, b.CheckOut)
	if !r.Valid() {
		return invalid("checkOut", "invalid_range", "check-out must be a valid date after check-in")
	}
	if len(b.SelectedRooms) == 0 {
		return invalid("selectedRooms", "required", "at least one room is required")
	}
	seen := map[string]bool{}
	for _, id := range b.SelectedRooms {
		if seen[id] {
			return invalid("selectedRooms", "duplicate", "room "+id+" is selected twice")
		}
		seen[id] = true
	}
	if b.Guests < 1 || b.Guests > maxGuests {
		return invalid("guests", "out_of_range", "guests must be between 1 and 10")
	}
	if len(b.GuestNames) != b.Guests {
		return invalid("guestNames", "incomplete", "please enter names for all guests")
	}
	for _, n := range b.GuestNames {
		if isBlank(n) {
			return invalid("guestNames", "incomplete", "please enter names for all guests")
		}
	}
	if b.Purpose != models.PurposeOfficial && b.Purpose != models.PurposePrivate {
		return invalid("purpose", "required", "purpose must be official or private")
	}
	return nil
}

// Cancel marks a booking cancelled for good and frees its room nights.
func (s *BookingService) Cancel(ctx context.Context, id uint, reason string) (before, after *models.Booking, err error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	prev := *current
	b := *current
	b.Cancelled = true
	b.CancellationRequested = false
	if reason = strings.TrimSpace(reason); reason != "" {
		b.CancellationReason = reason
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&b).Error; err != nil {
			return err
		}
		return tx.Where("booking_id = ?", b.ID).Delete(&models.RoomNight{}).Error
	})
	if err != nil {
		return nil, nil, err
	}
	s.Log.WithField("booking_id", b.ID).Info("booking cancelled")
	s.publish(BookingChange{BookingID: b.ID, Before: &prev, After: &b})
	return &prev, &b, nil
}

// Delete removes a booking and its room nights.
func (s *BookingService) Delete(ctx context.Context, id uint) (*models.Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", b.ID).Delete(&models.RoomNight{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Booking{}, b.ID).Error
	})
	if err != nil {
		return nil, err
	}
	s.Log.WithField("booking_id", b.ID).Info("booking deleted")
	s.publish(BookingChange{BookingID: b.ID, Before: b})
	return b, nil
}

// BookingFilter narrows the admin list. Status is a derived status name.
type BookingFilter struct {
	Status  string
	Query   string
	Date    string
	HotelID uint
	Page    int
	PerPage int
}

func (s *BookingService) filtered(ctx context.Context, f BookingFilter) *gorm.DB {
	today := s.Today().String()
	q := s.DB.WithContext(ctx).Model(&models.Booking{})
	switch f.Status {
	case models.StatusCancelled:
		q = q.Where("cancelled = ?", true)
	case models.StatusCompleted:
		q = q.Where("cancelled = ? AND check_out < ?", false, today)
	case models.StatusActive:
		q = q.Where("cancelled = ? AND check_out >= ?", false, today)
	}
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("lower(hotel_name) LIKE ? OR lower(applicant_name) LIKE ? OR lower(user_email) LIKE ?", like, like, like)
	}
	if f.Date != "" {
		q = q.Where("check_in = ? OR check_out = ?", f.Date, f.Date)
	}
	if f.HotelID != 0 {
		q = q.Where("hotel_id = ?", f.HotelID)
	}
	return q
}

func (s *BookingService) List(ctx context.Context, f BookingFilter) ([]BookingView, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 25
	}
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.Booking
	err := s.filtered(ctx, f).
		Order("created_at DESC").
		Offset((f.Page - 1) * f.PerPage).
		Limit(f.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return NewBookingViews(items, s.Today()), total, nil
}

type Stats struct {
	Total                int64 `json:"total"`
	Active               int64 `json:"active"`
	Completed            int64 `json:"completed"`
	Cancelled            int64 `json:"cancelled"`
	PendingCancellations int64 `json:"pendingCancellations"`
	CheckInsToday        int64 `json:"checkInsToday"`
}

func (s *BookingService) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	today := s.Today().String()
	counts := []struct {
		dst   *int64
		scope func(*gorm.DB) *gorm.DB
	}{
		{&st.Total, func(q *gorm.DB) *gorm.DB { return q }},
		{&st.Cancelled, func(q *gorm.DB) *gorm.DB { return q.Where("cancelled = ?", true) }},
		{&st.Completed, func(q *gorm.DB) *gorm.DB { return q.Where("cancelled = ? AND check_out < ?", false, today) }},
		{&st.Active, func(q *gorm.DB) *gorm.DB { return q.Where("cancelled = ? AND check_out >= ?", false, today) }},
		{&st.PendingCancellations, func(q *gorm.DB) *gorm.DB {
			return q.Where("cancelled = ? AND cancellation_requested = ?", false, true)
		}},
		{&st.CheckInsToday, func(q *gorm.DB) *gorm.DB { return q.Where("cancelled = ? AND check_in = ?", false, today) }},
	}
	for _, c := range counts {
		if err := c.scope(s.DB.WithContext(ctx).Model(&models.Booking{})).Count(c.dst).Error; err != nil {
			return Stats{}, err
		}
	}
	return st, nil
}
