package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"staycation/models"
)

type HolidayInput struct {
	Name      string `json:"name" binding:"required,max=100"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate"`
}

type HolidayService struct {
	db *gorm.DB
}

func NewHolidayService(db *gorm.DB) *HolidayService {
	return &HolidayService{db: db}
}

// List returns holidays overlapping year, or every holiday when year is 0.
func (s *HolidayService) List(ctx context.Context, year int) ([]models.Holiday, error) {
	db := s.db.WithContext(ctx).Order("start_date")
	if year > 0 {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		db = db.Where("start_date < ? AND end_date >= ?", to, from)
	}
	var holidays []models.Holiday
	err := db.Find(&holidays).Error
	return holidays, err
}

func (s *HolidayService) Create(ctx context.Context, in HolidayInput) (*models.Holiday, error) {
	start, err := ParseDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	end := start
	if in.EndDate != "" {
		if end, err = ParseDate(in.EndDate); err != nil {
			return nil, err
		}
	}
	if end.Before(start) {
		return nil, BadRequest("endDate must not be before startDate")
	}
	h := &models.Holiday{Name: strings.TrimSpace(in.Name), StartDate: start, EndDate: end}
	if err := s.db.WithContext(ctx).Create(h).Error; err != nil {
		return nil, err
	}
	return h, nil
}

func (s *HolidayService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Holiday{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NotFound("holiday not found")
	}
	return nil
}
