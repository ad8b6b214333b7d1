package models

import (
	"time"

	"gorm.io/datatypes"
)

// Document stores a whole user collection as one versioned JSON row for the
// database store backend. Version is a content hash used as the
// optimistic-concurrency marker.
type Document struct {
	ID  uint64 `gorm:"primaryKey;autoIncrement"`       // Primary key.
	Key string `gorm:"type:text;not null;uniqueIndex"` // Document key.

	Content datatypes.JSON `gorm:"not null"`           // Serialized collection.
	Version string         `gorm:"type:text;not null"` // Content hash of Content.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
