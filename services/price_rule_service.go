package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"staycation/models"
)

type PriceRuleInput struct {
	Name      string               `json:"name" binding:"required,max=100"`
	RoomID    *uint                `json:"roomId"`
	StartDate string               `json:"startDate" binding:"required"`
	EndDate   string               `json:"endDate" binding:"required"`
	Type      models.PriceRuleType `json:"type" binding:"required,oneof=percentage fixed"`
	Value     decimal.Decimal      `json:"value"`
	DayScope  models.DayScope      `json:"dayScope" binding:"omitempty,oneof=all weekend holiday"`
	IsActive  *bool                `json:"isActive"`
}

type PriceRuleService struct {
	db    *gorm.DB
	cache *Cache
}

func NewPriceRuleService(db *gorm.DB, cache *Cache) *PriceRuleService {
	return &PriceRuleService{db: db, cache: cache}
}

var minPercentage = decimal.NewFromInt(-100)

// build validates the input into a rule for property p.
func (s *PriceRuleService) build(ctx context.Context, p *models.Property, in PriceRuleInput, rule *models.PriceRule) error {
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return err
	}
	end, err := ParseDate(in.EndDate)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return BadRequest("endDate must not be before startDate")
	}
	if in.Value.IsZero() {
		return BadRequest("value must not be 0")
	}
	switch in.Type {
	case models.PriceRulePercentage:
		if in.Value.LessThan(minPercentage) {
			return BadRequest("percentage value must be at least -100")
		}
	case models.PriceRuleFixed:
		if in.Value.IsNegative() {
			return BadRequest("fixed value must be positive")
		}
	default:
		return BadRequest("type must be percentage or fixed")
	}
	if in.RoomID != nil {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Room{}).Where("id = ? AND property_id = ?", *in.RoomID, p.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return BadRequest("room does not belong to this property")
		}
	}

	rule.PropertyID = p.ID
	rule.RoomID = in.RoomID
	rule.Name = strings.TrimSpace(in.Name)
	rule.StartDate = start
	rule.EndDate = end
	rule.Type = in.Type
	rule.Value = in.Value.Round(2)
	rule.DayScope = in.DayScope
	if rule.DayScope == "" {
		rule.DayScope = models.DayScopeAll
	}
	// new rules start active; an update without isActive keeps the stored flag
	if in.IsActive != nil {
		rule.IsActive = *in.IsActive
	} else if rule.ID == 0 {
		rule.IsActive = true
	}
	return nil
}

func (s *PriceRuleService) List(ctx context.Context, userID, propertyID uint) ([]models.PriceRule, error) {
	if _, err := OwnedProperty(ctx, s.db, userID, propertyID); err != nil {
		return nil, err
	}
	var rules []models.PriceRule
	err := s.db.WithContext(ctx).Where("property_id = ?", propertyID).Order("start_date, id").Find(&rules).Error
	return rules, err
}

func (s *PriceRuleService) Create(ctx context.Context, userID, propertyID uint, in PriceRuleInput) (*models.PriceRule, error) {
	p, err := OwnedProperty(ctx, s.db, userID, propertyID)
	if err != nil {
		return nil, err
	}
	rule := &models.PriceRule{}
	if err := s.build(ctx, p, in, rule); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(rule).Error; err != nil {
		return nil, err
	}
	s.cache.DeletePrefix(ctx, propertyCachePrefix)
	return rule, nil
}

func (s *PriceRuleService) owned(ctx context.Context, userID, propertyID, id uint) (*models.Property, *models.PriceRule, error) {
	p, err := OwnedProperty(ctx, s.db, userID, propertyID)
	if err != nil {
		return nil, nil, err
	}
	var rule models.PriceRule
	err = s.db.WithContext(ctx).Where("id = ? AND property_id = ?", id, p.ID).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, NotFound("price rule not found")
	}
	if err != nil {
		return nil, nil, err
	}
	return p, &rule, nil
}

func (s *PriceRuleService) Update(ctx context.Context, userID, propertyID, id uint, in PriceRuleInput) (*models.PriceRule, error) {
	p, rule, err := s.owned(ctx, userID, propertyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.build(ctx, p, in, rule); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(rule).Error; err != nil {
		return nil, err
	}
	s.cache.DeletePrefix(ctx, propertyCachePrefix)
	return rule, nil
}

func (s *PriceRuleService) Delete(ctx context.Context, userID, propertyID, id uint) error {
	_, rule, err := s.owned(ctx, userID, propertyID, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(rule).Error; err != nil {
		return err
	}
	s.cache.DeletePrefix(ctx, propertyCachePrefix)
	return nil
}
