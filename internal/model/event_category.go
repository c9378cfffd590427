package model

import "time"

// EventCategory is a user-defined bucket of events. Names are stored
// lowercase and are unique per owning user. Color is a packed 0xRRGGBB
// integer. UpdatedAt advances whenever an event is appended, which is
// what keeps the dashboard listing ordered by recent activity.
type EventCategory struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"index:idx_category_name_user,unique" json:"-"`
	Name      string `gorm:"index:idx_category_name_user,unique" json:"name"`
	Color     int    `json:"color"`
	Emoji     string `json:"emoji,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Events    []Event   `gorm:"foreignKey:EventCategoryID;constraint:OnDelete:CASCADE" json:"-"`
}
