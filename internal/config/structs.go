package config

import (
	"time"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/logger"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings/definition"
)

// Config overall data structure.
type Config struct {
	DB    DB `mapstructure:"db"`
	Log   logger.Log
	Cache Cache `mapstructure:"cache"`

	// Plugins is the static plugin manifest, indexed by plugin key.
	Plugins map[string]Plugin `mapstructure:"plugins"`
}

// Cache holds the settings cache configuration.
type Cache struct {
	Enabled  bool          `mapstructure:"enabled"`  // false = every read goes to the database
	TTL      time.Duration `mapstructure:"ttl"`      // lifetime of a cached value
	Capacity uint64        `mapstructure:"capacity"` // 0 = unbounded
}

// Plugin declares a plugin together with its settings.
type Plugin struct {
	Name         string         `mapstructure:"name"`
	Active       bool           `mapstructure:"active"`
	Settings     definition.Map `mapstructure:"settings"`
	UserSettings definition.Map `mapstructure:"usersettings"`
}
