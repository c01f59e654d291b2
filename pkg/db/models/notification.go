package models

import "time"

// Notification is a storefront banner message that stops being served once
// ExpiryDate passes.
type Notification struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Heading     string    `gorm:"column:heading;not null" json:"heading"`
	Description string    `gorm:"column:description;not null" json:"description"`
	ImageURL    *string   `gorm:"column:image_url" json:"image_url"`
	ExpiryDate  time.Time `gorm:"column:expiry_date;not null" json:"expiry_date"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
