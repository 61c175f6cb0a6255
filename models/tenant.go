package models

import "time"

// Tenant is the owner profile of a user with role tenant.
type Tenant struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	UserID       uint          `gorm:"uniqueIndex;not null" json:"userId"`
	CompanyName  string        `gorm:"size:150" json:"companyName"`
	Phone        string        `gorm:"size:20" json:"phone"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BankAccounts []BankAccount `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"bankAccounts"`
}
