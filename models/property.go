package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Amenity struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Icon string `gorm:"size:50" json:"icon"`
}

type Property struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	TenantID    uint                        `gorm:"index;not null" json:"tenantId"`
	CategoryID  *uint                       `gorm:"index" json:"categoryId"`
	Name        string                      `gorm:"size:150;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	Address     string                      `gorm:"size:255" json:"address"`
	City        string                      `gorm:"size:100;index;not null" json:"city"`
	Province    string                      `gorm:"size:100" json:"province"`
	Latitude    *float64                    `json:"latitude"`
	Longitude   *float64                    `json:"longitude"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt              `gorm:"index" json:"-"`

	// lowest room base price, filled only by queries that select it
	MinPrice decimal.NullDecimal `gorm:"->;-:migration" json:"minPrice"`

	Tenant    *Tenant   `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Category  *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Amenities []Amenity `gorm:"many2many:property_amenities;" json:"amenities"`
	Rooms     []Room    `gorm:"foreignKey:PropertyID" json:"rooms,omitempty"`
}
