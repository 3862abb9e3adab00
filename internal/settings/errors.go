package settings

import (
	"errors"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/db/controller/setting"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings/definition"
)

var (
	// ErrUnknownSettingKey is returned when a key is not declared by the plugin.
	// It is a programming error and never replaced by a backup value.
	ErrUnknownSettingKey = errors.New("unknown setting key")

	// ErrInvalidSettingValue is returned when a value fails the rules of its definition.
	ErrInvalidSettingValue = definition.ErrInvalidValue

	// ErrStorageUnavailable is returned when the store could not be reached.
	ErrStorageUnavailable = setting.ErrStorageUnavailable

	// ErrMissingPluginIdentity marks a write attempted before the plugin was registered.
	// Facets log it and return nil.
	ErrMissingPluginIdentity = setting.ErrPluginNotFound

	// ErrPluginKeyEmpty is returned by New for a plugin without key.
	ErrPluginKeyEmpty = setting.ErrPluginKeyEmpty
)
