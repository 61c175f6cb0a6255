package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"staycation/config"
	"staycation/models"
)

type BookingItemInput struct {
	RoomID uint `json:"roomId" form:"roomId" binding:"required"`
	Units  int  `json:"units" form:"units" binding:"omitempty,min=1"`
}

type CreateBookingInput struct {
	PropertyID uint               `json:"propertyId" form:"propertyId" binding:"required"`
	CheckIn    string             `json:"checkIn" form:"checkIn" binding:"required"`
	CheckOut   string             `json:"checkOut" form:"checkOut" binding:"required"`
	Guests     int                `json:"guests" form:"guests" binding:"required,min=1"`
	Items      []BookingItemInput `json:"items" binding:"omitempty,dive"`
	// single room bookings from older clients
	RoomID uint `json:"roomId" form:"roomId"`
}

type QuoteItem struct {
	RoomID         uint            `json:"roomId"`
	RoomName       string          `json:"roomName"`
	Units          int             `json:"units"`
	Nights         int             `json:"nights"`
	AvailableUnits int             `json:"availableUnits"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Days           []DayPrice      `json:"days"`
}

type Quote struct {
	PropertyID uint            `json:"propertyId"`
	CheckIn    string          `json:"checkIn"`
	CheckOut   string          `json:"checkOut"`
	Nights     int             `json:"nights"`
	Guests     int             `json:"guests"`
	Items      []QuoteItem     `json:"items"`
	Total      decimal.Decimal `json:"total"`
	Available  bool            `json:"available"`

	checkIn  time.Time
	checkOut time.Time
}

type BookingService struct {
	db       *gorm.DB
	notifier Notifier
	storage  *LocalStorage
	cfg      config.BookingConfig
	log      *zap.Logger
	now      func() time.Time
}

func NewBookingService(db *gorm.DB, notifier Notifier, storage *LocalStorage, cfg config.BookingConfig, log *zap.Logger) *BookingService {
	return &BookingService{db: db, notifier: notifier, storage: storage, cfg: cfg, log: log, now: time.Now}
}

// ValidateStay checks the date range of a booking and returns its number of nights.
func ValidateStay(checkIn, checkOut, today time.Time, maxNights int) (int, error) {
	if !checkOut.After(checkIn) {
		return 0, BadRequest("checkOut must be after checkIn")
	}
	nights := NightsBetween(checkIn, checkOut)
	if maxNights > 0 && nights > maxNights {
		return 0, BadRequest("stay cannot exceed %d nights", maxNights)
	}
	if checkIn.Before(TruncateDay(today)) {
		return 0, BadRequest("checkIn cannot be in the past")
	}
	return nights, nil
}

// normalizeItems folds the legacy roomId field into items and merges repeated rooms.
func normalizeItems(in CreateBookingInput) ([]BookingItemInput, error) {
	items := in.Items
	if len(items) == 0 && in.RoomID != 0 {
		items = []BookingItemInput{{RoomID: in.RoomID, Units: 1}}
	}
	if len(items) == 0 {
		return nil, BadRequest("at least one room is required")
	}
	units := map[uint]int{}
	for _, it := range items {
		if it.RoomID == 0 {
			return nil, BadRequest("roomId is required")
		}
		if it.Units < 0 {
			return nil, BadRequest("units must be at least 1")
		}
		if it.Units == 0 {
			it.Units = 1
		}
		units[it.RoomID] += it.Units
	}
	merged := make([]BookingItemInput, 0, len(units))
	for id, n := range units {
		merged = append(merged, BookingItemInput{RoomID: id, Units: n})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].RoomID < merged[j].RoomID })
	return merged, nil
}

// quote prices the request against tx. With lock set the selected rooms are locked
// for the rest of the transaction on databases that support row locks.
func (s *BookingService) quote(tx *gorm.DB, in CreateBookingInput, lock bool) (*Quote, error) {
	checkIn, checkOut, err := parseStay(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, err
	}
	nights, err := ValidateStay(checkIn, checkOut, s.now().UTC(), s.cfg.MaxNights)
	if err != nil {
		return nil, err
	}
	items, err := normalizeItems(in)
	if err != nil {
		return nil, err
	}

	var property models.Property
	if err := tx.First(&property, in.PropertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("property not found")
		}
		return nil, err
	}

	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.RoomID
	}
	q := tx.Where("id IN ? AND property_id = ?", ids, property.ID).Order("id")
	if lock && tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Room, len(rooms))
	for _, r := range rooms {
		byID[r.ID] = r
	}

	capacity := 0
	for _, it := range items {
		room, ok := byID[it.RoomID]
		if !ok {
			return nil, BadRequest("room %d does not belong to this property", it.RoomID)
		}
		capacity += room.Capacity * it.Units
	}
	if capacity < in.Guests {
		return nil, BadRequest("selected rooms fit at most %d guests", capacity)
	}

	occ, err := LoadOccupancy(tx, ids, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	calc, err := LoadPriceCalculator(tx, property.ID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	quote := &Quote{
		PropertyID: property.ID,
		CheckIn:    checkIn.Format(DateLayout),
		CheckOut:   checkOut.Format(DateLayout),
		Nights:     nights,
		Guests:     in.Guests,
		Total:      decimal.Zero,
		Available:  true,
		checkIn:    checkIn,
		checkOut:   checkOut,
	}
	for _, it := range items {
		room := byID[it.RoomID]
		days := calc.Breakdown(room, checkIn, checkOut)
		perUnit := decimal.Zero
		for _, d := range days {
			perUnit = perUnit.Add(d.Price)
		}
		qi := QuoteItem{
			RoomID:         room.ID,
			RoomName:       room.Name,
			Units:          it.Units,
			Nights:         nights,
			AvailableUnits: occ.MinAvailable(room, checkIn, checkOut),
			Subtotal:       perUnit.Mul(decimal.NewFromInt(int64(it.Units))),
			Days:           days,
		}
		if qi.AvailableUnits < it.Units {
			quote.Available = false
		}
		quote.Items = append(quote.Items, qi)
		quote.Total = quote.Total.Add(qi.Subtotal)
	}
	return quote, nil
}

// Quote prices a stay without booking it.
func (s *BookingService) Quote(ctx context.Context, in CreateBookingInput) (*Quote, error) {
	return s.quote(s.db.WithContext(ctx), in, false)
}

// Create books the requested rooms. Availability is checked and the booking inserted in one
// transaction so two requests cannot take the same last unit.
func (s *BookingService) Create(ctx context.Context, userID uint, in CreateBookingInput) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quote, err := s.quote(tx, in, true)
		if err != nil {
			return err
		}
		for _, it := range quote.Items {
			if it.AvailableUnits < it.Units {
				return Conflict("room %s is not available for the selected dates", it.RoomName)
			}
		}

		deadline := s.now().Add(s.cfg.PaymentTimeout)
		booking = models.Booking{
			UserID:          userID,
			PropertyID:      quote.PropertyID,
			CheckIn:         quote.checkIn,
			CheckOut:        quote.checkOut,
			Guests:          quote.Guests,
			Nights:          quote.Nights,
			TotalPrice:      quote.Total,
			Status:          models.BookingPendingPayment,
			PaymentDeadline: &deadline,
		}
		for _, it := range quote.Items {
			booking.Items = append(booking.Items, models.BookingItem{
				RoomID:   it.RoomID,
				Units:    it.Units,
				Nights:   it.Nights,
				Subtotal: it.Subtotal,
			})
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		return nil, err
	}

	BookingsCreatedTotal.Inc()
	s.log.Info("booking created",
		zap.Uint("booking_id", booking.ID),
		zap.Uint("user_id", userID),
		zap.Uint("property_id", booking.PropertyID),
		zap.String("total", booking.TotalPrice.String()),
	)

	full, err := s.load(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	_ = s.notifier.SendBookingCreated(ctx, full)
	return full, nil
}

func (s *BookingService) load(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Property", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Items.Room", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("booking not found")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func parseStatus(raw string) (models.BookingStatus, error) {
	if raw == "" {
		return "", nil
	}
	st := models.BookingStatus(strings.ToLower(raw))
	if !st.Valid() {
		return "", BadRequest("unknown booking status %q", raw)
	}
	return st, nil
}

// ListForUser returns the guest's own bookings, newest first.
func (s *BookingService) ListForUser(ctx context.Context, userID uint, status string, page PageQuery) ([]models.Booking, Pagination, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, Pagination{}, err
	}
	db := s.db.WithContext(ctx).Model(&models.Booking{}).Where("user_id = ?", userID)
	if st != "" {
		db = db.Where("status = ?", st)
	}
	return s.page(db, page)
}

func (s *BookingService) page(db *gorm.DB, page PageQuery) ([]models.Booking, Pagination, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}
	var list []models.Booking
	err := db.
		Preload("User").
		Preload("Property", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Preload("Items.Room", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("bookings.created_at DESC").
		Order("bookings.id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&list).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return list, page.Pagination(total), nil
}

// Get returns a booking visible to the guest who made it, the owning tenant or an admin.
func (s *BookingService) Get(ctx context.Context, userID uint, role models.Role, id uint) (*models.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID == userID || role == models.RoleAdmin {
		return b, nil
	}
	if role == models.RoleTenant {
		tenant, err := TenantFor(ctx, s.db, userID)
		if err != nil {
			return nil, err
		}
		if b.Property != nil && b.Property.TenantID == tenant.ID {
			return b, nil
		}
	}
	return nil, NotFound("booking not found")
}

func (s *BookingService) ownBooking(ctx context.Context, userID, id uint) (*models.Booking, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, NotFound("booking not found")
	}
	return b, nil
}

// tenantBooking loads a booking on one of userID's properties.
func (s *BookingService) tenantBooking(ctx context.Context, userID, id uint) (*models.Booking, error) {
	tenant, err := TenantFor(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Property == nil || b.Property.TenantID != tenant.ID {
		return nil, NotFound("booking not found")
	}
	return b, nil
}

// transition moves b to a new status only if it is still in one of from.
func (s *BookingService) transition(ctx context.Context, b *models.Booking, to models.BookingStatus, updates map[string]interface{}, from ...models.BookingStatus) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status IN ?", b.ID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return Conflict("booking status changed, reload and try again")
	}
	b.Status = to
	BookingTransitionsTotal.WithLabelValues(string(to)).Inc()
	return nil
}

// UploadPaymentProof stores the transfer receipt and hands the booking to the tenant.
func (s *BookingService) UploadPaymentProof(ctx context.Context, userID, id uint, fh *multipart.FileHeader) (*models.Booking, error) {
	b, err := s.ownBooking(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPendingPayment {
		return nil, BadRequest("payment proof can only be uploaded while payment is pending")
	}
	now := s.now()
	if b.PaymentDeadline != nil && now.After(*b.PaymentDeadline) {
		return nil, BadRequest("payment deadline has passed")
	}
	url, err := s.storage.SavePaymentProof(fh)
	if err != nil {
		return nil, err
	}
	err = s.transition(ctx, b, models.BookingWaitingConfirmation, map[string]interface{}{
		"payment_proof_url": url,
		"payment_proof_at":  now,
	}, models.BookingPendingPayment)
	if err != nil {
		return nil, err
	}
	s.log.Info("payment proof uploaded", zap.Uint("booking_id", b.ID))
	return s.load(ctx, b.ID)
}

// Cancel is the guest cancelling their own booking.
func (s *BookingService) Cancel(ctx context.Context, userID, id uint, reason string) (*models.Booking, error) {
	b, err := s.ownBooking(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !b.Status.CancellableByUser() {
		return nil, BadRequest("booking cannot be cancelled in status %s", b.Status)
	}
	return s.cancel(ctx, b, models.CancelledByUser, reason, models.BookingPendingPayment, models.BookingWaitingConfirmation)
}

func (s *BookingService) cancel(ctx context.Context, b *models.Booking, by, reason string, from ...models.BookingStatus) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = fmt.Sprintf("cancelled by %s", by)
	}
	err := s.transition(ctx, b, models.BookingCancelled, map[string]interface{}{
		"cancel_reason": reason,
		"cancelled_by":  by,
	}, from...)
	if err != nil {
		return nil, err
	}
	b.CancelReason, b.CancelledBy = reason, by
	BookingsCancelledTotal.WithLabelValues(by).Inc()
	s.log.Info("booking cancelled", zap.Uint("booking_id", b.ID), zap.String("by", by), zap.String("reason", reason))
	_ = s.notifier.SendBookingCancelled(ctx, b)
	return b, nil
}

// TenantCancel lets the host drop a booking that has not been paid yet.
func (s *BookingService) TenantCancel(ctx context.Context, userID, id uint, reason string) (*models.Booking, error) {
	b, err := s.tenantBooking(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingPendingPayment || b.PaymentProofURL != "" {
		return nil, BadRequest("only unpaid bookings without payment proof can be cancelled")
	}
	return s.cancel(ctx, b, models.CancelledByTenant, reason, models.BookingPendingPayment)
}

// Confirm accepts the uploaded payment.
func (s *BookingService) Confirm(ctx context.Context, userID, id uint) (*models.Booking, error) {
	b, err := s.tenantBooking(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingWaitingConfirmation {
		return nil, BadRequest("only bookings waiting for confirmation can be confirmed")
	}
	now := s.now()
	if err := s.transition(ctx, b, models.BookingConfirmed, map[string]interface{}{"confirmed_at": now}, models.BookingWaitingConfirmation); err != nil {
		return nil, err
	}
	b.ConfirmedAt = &now
	s.log.Info("booking confirmed", zap.Uint("booking_id", b.ID))
	_ = s.notifier.SendPaymentConfirmed(ctx, b)
	return b, nil
}

// Reject refuses the uploaded payment and releases the rooms.
func (s *BookingService) Reject(ctx context.Context, userID, id uint, reason string) (*models.Booking, error) {
	b, err := s.tenantBooking(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingWaitingConfirmation {
		return nil, BadRequest("only bookings waiting for confirmation can be rejected")
	}
	reason = strings.TrimSpace(reason)
	if err := s.transition(ctx, b, models.BookingRejected, map[string]interface{}{"cancel_reason": reason, "cancelled_by": models.CancelledByTenant}, models.BookingWaitingConfirmation); err != nil {
		return nil, err
	}
	b.CancelReason, b.CancelledBy = reason, models.CancelledByTenant
	s.log.Info("booking rejected", zap.Uint("booking_id", b.ID))
	_ = s.notifier.SendPaymentRejected(ctx, b)
	return b, nil
}
