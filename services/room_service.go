package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"staycation/models"
)

type RoomInput struct {
	PropertyID  uint            `json:"propertyId" binding:"required"`
	Name        string          `json:"name" binding:"required,max=150"`
	Description string          `json:"description"`
	Capacity    int             `json:"capacity" binding:"required,min=1"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	TotalUnits  int             `json:"totalUnits" binding:"omitempty,min=1"`
	Images      []string        `json:"images"`
}

type RoomUpdateInput struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=150"`
	Description *string          `json:"description"`
	Capacity    *int             `json:"capacity" binding:"omitempty,min=1"`
	BasePrice   *decimal.Decimal `json:"basePrice"`
	TotalUnits  *int             `json:"totalUnits" binding:"omitempty,min=1"`
	Images      *[]string        `json:"images"`
}

type RoomBlockInput struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Reason    string `json:"reason" binding:"max=255"`
}

type RoomAvailability struct {
	RoomID         uint   `json:"roomId"`
	CheckIn        string `json:"checkIn"`
	CheckOut       string `json:"checkOut"`
	Units          int    `json:"units"`
	AvailableUnits int    `json:"availableUnits"`
	Available      bool   `json:"available"`
}

type RoomPrices struct {
	RoomID uint            `json:"roomId"`
	Nights int             `json:"nights"`
	Days   []DayPrice      `json:"days"`
	Total  decimal.Decimal `json:"total"`
}

type RoomService struct {
	db       *gorm.DB
	cache    *Cache
	uploader ImageUploader
	log      *zap.Logger
}

func NewRoomService(db *gorm.DB, cache *Cache, uploader ImageUploader, log *zap.Logger) *RoomService {
	return &RoomService{db: db, cache: cache, uploader: uploader, log: log}
}

func (s *RoomService) Get(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	err := s.db.WithContext(ctx).Preload("Property").First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("room not found")
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// parseStay validates a [checkIn, checkOut) request range.
func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !out.After(in) {
		return time.Time{}, time.Time{}, BadRequest("checkOut must be after checkIn")
	}
	return in, out, nil
}

func (s *RoomService) Availability(ctx context.Context, id uint, checkIn, checkOut string, units int) (*RoomAvailability, error) {
	in, out, err := parseStay(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if units < 1 {
		units = 1
	}
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	occ, err := LoadOccupancy(s.db.WithContext(ctx), []uint{room.ID}, in, out)
	if err != nil {
		return nil, err
	}
	free := occ.MinAvailable(*room, in, out)
	return &RoomAvailability{
		RoomID:         room.ID,
		CheckIn:        in.Format(DateLayout),
		CheckOut:       out.Format(DateLayout),
		Units:          units,
		AvailableUnits: free,
		Available:      free >= units,
	}, nil
}

func (s *RoomService) Prices(ctx context.Context, id uint, checkIn, checkOut string) (*RoomPrices, error) {
	in, out, err := parseStay(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	calc, err := LoadPriceCalculator(s.db.WithContext(ctx), room.PropertyID, in, out)
	if err != nil {
		return nil, err
	}
	days := calc.Breakdown(*room, in, out)
	total := decimal.Zero
	for _, d := range days {
		total = total.Add(d.Price)
	}
	return &RoomPrices{RoomID: room.ID, Nights: len(days), Days: days, Total: total}, nil
}

func (s *RoomService) owned(ctx context.Context, userID, roomID uint) (*models.Room, error) {
	var room models.Room
	err := s.db.WithContext(ctx).First(&room, roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("room not found")
	}
	if err != nil {
		return nil, err
	}
	if _, err := OwnedProperty(ctx, s.db, userID, room.PropertyID); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *RoomService) invalidate(ctx context.Context) {
	s.cache.DeletePrefix(ctx, propertyCachePrefix)
}

func (s *RoomService) Create(ctx context.Context, userID uint, in RoomInput) (*models.Room, error) {
	if _, err := OwnedProperty(ctx, s.db, userID, in.PropertyID); err != nil {
		return nil, err
	}
	if !in.BasePrice.IsPositive() {
		return nil, BadRequest("basePrice must be greater than 0")
	}
	if in.TotalUnits == 0 {
		in.TotalUnits = 1
	}
	room := &models.Room{
		PropertyID:  in.PropertyID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Capacity:    in.Capacity,
		BasePrice:   in.BasePrice.Round(2),
		TotalUnits:  in.TotalUnits,
		Images:      append([]string{}, in.Images...),
	}
	if err := s.db.WithContext(ctx).Create(room).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Info("room created", zap.Uint("room_id", room.ID), zap.Uint("property_id", room.PropertyID))
	return room, nil
}

func (s *RoomService) Update(ctx context.Context, userID, id uint, in RoomUpdateInput) (*models.Room, error) {
	room, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		room.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		room.Description = *in.Description
	}
	if in.Capacity != nil {
		room.Capacity = *in.Capacity
	}
	if in.BasePrice != nil {
		if !in.BasePrice.IsPositive() {
			return nil, BadRequest("basePrice must be greater than 0")
		}
		room.BasePrice = in.BasePrice.Round(2)
	}
	if in.TotalUnits != nil {
		room.TotalUnits = *in.TotalUnits
	}
	if in.Images != nil {
		room.Images = *in.Images
	}
	if err := s.db.WithContext(ctx).Omit("Property").Save(room).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return room, nil
}

func (s *RoomService) Delete(ctx context.Context, userID, id uint) error {
	room, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	var active int64
	err = s.db.WithContext(ctx).Model(&models.BookingItem{}).
		Joins("JOIN bookings ON bookings.id = booking_items.booking_id").
		Where("booking_items.room_id = ? AND bookings.status IN ? AND bookings.check_out > ?", room.ID, models.ActiveBookingStatuses, TruncateDay(time.Now())).
		Count(&active).Error
	if err != nil {
		return err
	}
	if active > 0 {
		return BadRequest("room has active bookings")
	}
	if err := s.db.WithContext(ctx).Delete(room).Error; err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *RoomService) AddImages(ctx context.Context, userID, id uint, files []*multipart.FileHeader) (*models.Room, error) {
	room, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	urls, err := UploadImages(ctx, s.uploader, files, "rooms")
	if err != nil {
		return nil, err
	}
	room.Images = append(room.Images, urls...)
	if err := s.db.WithContext(ctx).Model(room).Update("images", room.Images).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return room, nil
}

// AddBlock takes the room out of sale for [startDate, endDate).
func (s *RoomService) AddBlock(ctx context.Context, userID, roomID uint, in RoomBlockInput) (*models.RoomBlock, error) {
	room, err := s.owned(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}
	start, end, err := parseStay(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	block := &models.RoomBlock{RoomID: room.ID, StartDate: start, EndDate: end, Reason: in.Reason}
	if err := s.db.WithContext(ctx).Create(block).Error; err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return block, nil
}

func (s *RoomService) ListBlocks(ctx context.Context, roomID uint) ([]models.RoomBlock, error) {
	var blocks []models.RoomBlock
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Order("start_date").Find(&blocks).Error
	return blocks, err
}

func (s *RoomService) DeleteBlock(ctx context.Context, userID, roomID, blockID uint) error {
	room, err := s.owned(ctx, userID, roomID)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ? AND room_id = ?", blockID, room.ID).Delete(&models.RoomBlock{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFound("block not found")
	}
	s.invalidate(ctx)
	return nil
}
