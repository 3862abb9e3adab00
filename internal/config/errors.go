package config

import (
	"errors"
)

var (
	// ErrEmptyDBName error if config db.name is empty.
	ErrEmptyDBName = errors.New("config db.name can not be empty")

	// ErrUnknownGormEngine error if config db.gormengine is not supported.
	ErrUnknownGormEngine = errors.New("config db.gormengine must be one of sqlite, mysql, postgres")

	// ErrNegativeCacheTTL error if config cache.ttl is negative.
	ErrNegativeCacheTTL = errors.New("config cache.ttl can not be negative")

	// ErrEmptyPluginKey error if a plugin of the manifest has an empty key.
	ErrEmptyPluginKey = errors.New("config plugins key can not be empty")
)
