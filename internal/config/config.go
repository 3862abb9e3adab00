// Package config handles input from etc/main.toml and the environment.
package config

import (
	"reflect"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. PLUGIN_SETTINGS_DB_NAME.
	EnvPrefix = "PLUGIN_SETTINGS"

	// DefaultCacheTTL is used when cache.ttl is not configured.
	DefaultCacheTTL = 5 * time.Minute
)

// ReadConfig from <path>main.toml, overridden by environment variables.
func ReadConfig(path string) (Config, error) {
	var c Config

	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigName("main")
	v.SetConfigType("toml")
	v.AddConfigPath(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, reflect.TypeOf(c))

	v.SetDefault("db.gormengine", "sqlite")
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("log.loglevel", "info")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	return c, validate(&c)
}

// bindEnvs registers every struct leaf of t with viper so Unmarshal
// sees environment overrides. Maps are skipped, the plugin manifest is file only.
func bindEnvs(v *viper.Viper, t reflect.Type, parts ...string) {
	for i := range t.NumField() {
		f := t.Field(i)

		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}

		key := append(append([]string{}, parts...), tag)

		switch f.Type.Kind() { //nolint:exhaustive
		case reflect.Struct:
			bindEnvs(v, f.Type, key...)
		case reflect.Map:
			continue
		default:
			_ = v.BindEnv(strings.Join(key, "."))
		}
	}
}

// validate the settings needed to open the database and build the cache.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	switch c.DB.GormEngine {
	case "sqlite", "mysql", "postgres":
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	if c.DB.Name == "" {
		return errors.Wrap(ErrEmptyDBName, invalidErrMessage)
	}

	if c.Cache.TTL < 0 {
		return errors.Wrap(ErrNegativeCacheTTL, invalidErrMessage)
	}

	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}

	for key := range c.Plugins {
		if key == "" {
			return errors.Wrap(ErrEmptyPluginKey, invalidErrMessage)
		}
	}

	return nil
}
