package models

import "time"

type Review struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookingID  uint       `gorm:"uniqueIndex;not null" json:"bookingId"`
	UserID     uint       `gorm:"index;not null" json:"userId"`
	PropertyID uint       `gorm:"index;not null" json:"propertyId"`
	Rating     int        `gorm:"not null" json:"rating"`
	Comment    string     `gorm:"type:text" json:"comment"`
	Reply      string     `gorm:"type:text" json:"reply,omitempty"`
	RepliedAt  *time.Time `json:"repliedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
