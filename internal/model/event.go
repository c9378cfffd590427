package model

import (
	"time"

	"gorm.io/datatypes"
)

// Event is a single immutable record submitted by an end user. Fields
// holds the arbitrary key/value payload as-is; only key presence matters
// to the analytics layer, never value types or content.
type Event struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	EventCategoryID uint              `gorm:"index" json:"-"`
	// No explicit column type: the map migrates to JSONB on postgres,
	// which DISTINCT needs (plain json has no equality operator).
	Fields          datatypes.JSONMap `json:"fields"`
	CreatedAt       time.Time         `gorm:"index" json:"createdAt"`
}
