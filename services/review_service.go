package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"staycation/models"
)

type CreateReviewInput struct {
	BookingID uint   `json:"bookingId" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment" binding:"max=2000"`
}

type ReviewService struct {
	db    *gorm.DB
	cache *Cache
	now   func() time.Time
}

func NewReviewService(db *gorm.DB, cache *Cache) *ReviewService {
	return &ReviewService{db: db, cache: cache, now: time.Now}
}

// Create lets the guest review a completed stay once.
func (s *ReviewService) Create(ctx context.Context, userID uint, in CreateReviewInput) (*models.Review, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).First(&b, in.BookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && b.UserID != userID) {
		return nil, NotFound("booking not found")
	}
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingCompleted {
		return nil, BadRequest("only completed stays can be reviewed")
	}

	review := &models.Review{
		BookingID:  b.ID,
		UserID:     userID,
		PropertyID: b.PropertyID,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
	}
	if err := s.db.WithContext(ctx).Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, BadRequest("booking already reviewed")
		}
		return nil, err
	}
	s.cache.DeletePrefix(ctx, propertyCachePrefix)
	return review, nil
}

func (s *ReviewService) ListForProperty(ctx context.Context, propertyID uint, page PageQuery) ([]models.Review, Pagination, error) {
	db := s.db.WithContext(ctx).Model(&models.Review{}).Where("property_id = ?", propertyID)
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}
	var list []models.Review
	err := db.Preload("User").Order("created_at DESC").Order("id DESC").
		Limit(page.Limit).Offset(page.Offset()).Find(&list).Error
	if err != nil {
		return nil, Pagination{}, err
	}
	return list, page.Pagination(total), nil
}

// Reply records the host's single answer to a review on one of their properties.
func (s *ReviewService) Reply(ctx context.Context, userID, reviewID uint, reply string) (*models.Review, error) {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, BadRequest("reply must not be empty")
	}
	var review models.Review
	err := s.db.WithContext(ctx).First(&review, reviewID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("review not found")
	}
	if err != nil {
		return nil, err
	}
	if _, err := OwnedProperty(ctx, s.db, userID, review.PropertyID); err != nil {
		return nil, err
	}
	if review.Reply != "" {
		return nil, BadRequest("review already has a reply")
	}
	now := s.now()
	res := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ? AND (reply IS NULL OR reply = '')", review.ID).
		Updates(map[string]interface{}{"reply": reply, "replied_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, BadRequest("review already has a reply")
	}
	review.Reply, review.RepliedAt = reply, &now
	return &review, nil
}
