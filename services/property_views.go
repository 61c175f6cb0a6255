package services

import (
	"time"

	"github.com/shopspring/decimal"

	"staycation/models"
)

// The views below are what search and detail return and cache. They hold no
// pointers back to their parent, so they encode without cycles.

type RoomSummary struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Capacity    int             `json:"capacity"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	TotalUnits  int             `json:"totalUnits"`
	Images      []string        `json:"images"`
}

type HostSummary struct {
	ID           uint                 `json:"id"`
	CompanyName  string               `json:"companyName"`
	Phone        string               `json:"phone"`
	BankAccounts []models.BankAccount `json:"bankAccounts"`
}

type PropertyListItem struct {
	ID          uint                `json:"id"`
	TenantID    uint                `json:"tenantId"`
	CategoryID  *uint               `json:"categoryId"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Address     string              `json:"address"`
	City        string              `json:"city"`
	Province    string              `json:"province"`
	Latitude    *float64            `json:"latitude"`
	Longitude   *float64            `json:"longitude"`
	Images      []string            `json:"images"`
	MinPrice    decimal.NullDecimal `json:"minPrice"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Category    *models.Category    `json:"category,omitempty"`
	Amenities   []models.Amenity    `json:"amenities"`
	Rooms       []RoomSummary       `json:"rooms,omitempty"`
	Host        *HostSummary        `json:"host,omitempty"`
	AvgRating   float64             `json:"avgRating"`
	ReviewCount int64               `json:"reviewCount"`
}

func newRoomSummary(r models.Room) RoomSummary {
	return RoomSummary{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Capacity:    r.Capacity,
		BasePrice:   r.BasePrice,
		TotalUnits:  r.TotalUnits,
		Images:      append([]string{}, r.Images...),
	}
}

func newPropertyListItem(p models.Property, r ratingRow) PropertyListItem {
	item := PropertyListItem{
		ID:          p.ID,
		TenantID:    p.TenantID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Address:     p.Address,
		City:        p.City,
		Province:    p.Province,
		Latitude:    p.Latitude,
		Longitude:   p.Longitude,
		Images:      append([]string{}, p.Images...),
		MinPrice:    p.MinPrice,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Category:    p.Category,
		Amenities:   p.Amenities,
		AvgRating:   roundRating(r.AvgRating),
		ReviewCount: r.ReviewCount,
	}
	for _, room := range p.Rooms {
		item.Rooms = append(item.Rooms, newRoomSummary(room))
	}
	if p.Tenant != nil {
		item.Host = &HostSummary{
			ID:           p.Tenant.ID,
			CompanyName:  p.Tenant.CompanyName,
			Phone:        p.Tenant.Phone,
			BankAccounts: p.Tenant.BankAccounts,
		}
	}
	return item
}
