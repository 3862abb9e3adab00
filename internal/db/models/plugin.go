package models

import (
	"time"
)

// PluginConfig is the durable identity of a plugin.
// Setting records can only be written once it exists.
type PluginConfig struct {
	// ID is the unique identifier referenced by setting records.
	ID uint64 `gorm:"primaryKey"`
	// Key is the stable plugin identifier (slug).
	Key string `gorm:"unique;size:255;not null"`
	// Name is the display name of the plugin.
	Name string `gorm:"size:255"`
	// Active reports whether the plugin is enabled.
	Active bool
	// CreatedAt is the timestamp when the plugin was registered (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp of the last registration (managed by GORM).
	UpdatedAt time.Time
}
