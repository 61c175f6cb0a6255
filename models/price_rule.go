package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PriceRuleType string

const (
	PriceRulePercentage PriceRuleType = "percentage"
	PriceRuleFixed      PriceRuleType = "fixed"
)

type DayScope string

const (
	DayScopeAll     DayScope = "all"
	DayScopeWeekend DayScope = "weekend"
	DayScopeHoliday DayScope = "holiday"
)

// PriceRule overrides the nightly price of a property's rooms (or one room when RoomID is set)
// for every day in [StartDate, EndDate], both ends inclusive.
type PriceRule struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	PropertyID uint            `gorm:"index;not null" json:"propertyId"`
	RoomID     *uint           `gorm:"index" json:"roomId"`
	Name       string          `gorm:"size:100;not null" json:"name"`
	StartDate  time.Time       `gorm:"not null" json:"startDate"`
	EndDate    time.Time       `gorm:"not null" json:"endDate"`
	Type       PriceRuleType   `gorm:"size:20;not null" json:"type"`
	Value      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"value"`
	DayScope   DayScope        `gorm:"size:20;not null;default:all" json:"dayScope"`
	IsActive   bool            `gorm:"not null" json:"isActive"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}
