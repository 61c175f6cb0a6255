package models

import (
	"time"
)

type Role string

const (
	RoleUser   Role = "user"
	RoleTenant Role = "tenant"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleTenant || r == RoleAdmin
}

const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Name            string    `gorm:"size:100;not null" json:"name"`
	Email           string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password        string    `gorm:"size:255" json:"-"` // empty for Google and email-only sign ups
	Phone           string    `gorm:"size:20" json:"phone"`
	Avatar          string    `json:"avatar"`
	Role            Role      `gorm:"size:20;not null;default:user" json:"role"`
	IsEmailVerified bool      `gorm:"not null" json:"isEmailVerified"`
	Provider        string    `gorm:"size:20;not null;default:email" json:"provider"`
	Tenant          *Tenant   `gorm:"foreignKey:UserID" json:"tenant,omitempty"`
}

func (u User) HasPassword() bool {
	return u.Password != ""
}
