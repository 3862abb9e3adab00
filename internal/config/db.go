package config

import (
	"time"
)

// DB holds the database configuration settings.
type DB struct {
	Extras        string        `mapstructure:"extras"`
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	Name          string        `mapstructure:"name"` // database name, file name for sqlite
	GormEngine    string        `mapstructure:"gormengine"`
	MaxOpenConns  int           `mapstructure:"maxopenconns"`
	SlowThreshold time.Duration `mapstructure:"slowthreshold"`
}
