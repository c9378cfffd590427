package model

import "time"

// User mirrors an identity-provider account. A row is created on first
// authenticated access and owns all of the user's event categories.
type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExternalID string `gorm:"uniqueIndex" json:"externalId"`
	APIKey     string `gorm:"uniqueIndex" json:"-"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	Categories []EventCategory `gorm:"foreignKey:UserID" json:"-"`
}
