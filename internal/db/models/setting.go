// Package models contains database model definitions.
package models

import (
	"time"
)

// PluginSetting is a global setting value persisted for a plugin.
// The pair (PluginID, Key) is unique.
type PluginSetting struct {
	// ID is the unique identifier of the record.
	ID uint64 `gorm:"primaryKey"`
	// PluginID references the owning plugin.
	PluginID uint64 `gorm:"not null;uniqueIndex:idx_plugin_setting"`
	// Plugin is removed together with its settings.
	Plugin PluginConfig `gorm:"foreignKey:PluginID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE"`
	// Key is the declared setting key.
	Key string `gorm:"size:50;not null;uniqueIndex:idx_plugin_setting"`
	// Value is the persisted value.
	Value string `gorm:"size:2000"`
	// CreatedAt is the timestamp of the first write (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp of the last write (managed by GORM).
	UpdatedAt time.Time
}

// PluginUserSetting is a per user setting value persisted for a plugin.
// The triple (PluginID, UserID, Key) is unique.
type PluginUserSetting struct {
	ID       uint64       `gorm:"primaryKey"`
	PluginID uint64       `gorm:"not null;uniqueIndex:idx_plugin_user_setting"`
	Plugin   PluginConfig `gorm:"foreignKey:PluginID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE"`
	UserID   uint64       `gorm:"not null;uniqueIndex:idx_plugin_user_setting"`
	User     User         `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE"`
	Key      string       `gorm:"size:50;not null;uniqueIndex:idx_plugin_user_setting"`
	Value    string       `gorm:"size:2000"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
