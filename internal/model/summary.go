package model

import "time"

// CategorySummary is the per-category analytics row returned by the
// dashboard listing. It is derived on every request and never persisted.
//
// UniqueFieldCount and EventsCount cover the current calendar month only;
// LastPing covers the category's entire history. The asymmetry is
// deliberate: the dashboard shows this month's activity next to the most
// recent ping ever received.
type CategorySummary struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Color     int       `json:"color"`
	Emoji     string    `json:"emoji,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	UniqueFieldCount int        `json:"uniqueFieldCount"`
	EventsCount      int64      `json:"eventsCount"`
	LastPing         *time.Time `json:"lastPing"`
}
