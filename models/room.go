package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Room struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	PropertyID  uint                        `gorm:"index;not null" json:"propertyId"`
	Name        string                      `gorm:"size:150;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	Capacity    int                         `gorm:"not null" json:"capacity"`            // guests per unit
	BasePrice   decimal.Decimal             `gorm:"type:numeric(14,2);not null" json:"basePrice"` // per unit per night
	TotalUnits  int                         `gorm:"not null;default:1" json:"totalUnits"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt              `gorm:"index" json:"-"`
	Property    *Property                   `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}

// RoomBlock takes every unit of a room out of sale for [StartDate, EndDate).
type RoomBlock struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"index;not null" json:"roomId"`
	StartDate time.Time `gorm:"not null" json:"startDate"`
	EndDate   time.Time `gorm:"not null" json:"endDate"`
	Reason    string    `gorm:"size:255" json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}
