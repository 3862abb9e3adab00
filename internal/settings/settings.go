package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/db/controller/setting"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/db/models"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings/cache"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings/definition"
)

// Store persists setting records. *setting.Store implements it.
type Store interface {
	PluginConfig(ctx context.Context, pluginKey string) (*models.PluginConfig, error)
	GetGlobal(ctx context.Context, pluginKey, key string) (string, error)
	ListGlobal(ctx context.Context, pluginKey string) (map[string]string, error)
	SetGlobal(ctx context.Context, pluginID uint64, key, value string) error
	GetUser(ctx context.Context, pluginKey string, userID uint64, key string) (string, error)
	SetUser(ctx context.Context, pluginID, userID uint64, key, value string) error
}

// Cache holds recently read values. *cache.Cache implements it.
type Cache interface {
	Read(k cache.Key) (string, bool)
	Version() uint64
	PopulateIfVersion(k cache.Key, value string, version uint64) bool
	Invalidate(k cache.Key)
}

// User is the identity user settings are scoped by.
type User interface {
	GetID() uint64
}

// UserID is a User known only by its identifier.
type UserID uint64

// GetID implements User.
func (u UserID) GetID() uint64 {
	return uint64(u)
}

// Option configures a Facet.
type Option func(*Facet)

// WithCache lets reads that ask for it use c.
func WithCache(c Cache) Option {
	return func(f *Facet) {
		f.cache = c
	}
}

type readOptions struct {
	cache  bool
	backup string
}

// ReadOption configures a single read.
type ReadOption func(*readOptions)

// UseCache serves the read from the cache when possible and warms it on a store hit.
// Reads bypass the cache entirely without it.
func UseCache() ReadOption {
	return func(o *readOptions) {
		o.cache = true
	}
}

// Backup is returned when neither a record nor a default exists.
func Backup(value string) ReadOption {
	return func(o *readOptions) {
		o.backup = value
	}
}

// Facet is the settings capability of one plugin instance.
type Facet struct {
	plugin string
	global definition.Map
	user   definition.Map
	store  Store
	cache  Cache
	loads  singleflight.Group
}

// New returns the facet of the plugin identified by pluginKey.
// Both definition maps are verified and copied.
func New(pluginKey string, global, user definition.Map, store Store, opts ...Option) (*Facet, error) {
	if pluginKey == "" {
		return nil, ErrPluginKeyEmpty
	}

	var errs *multierror.Error

	if err := global.Verify(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("plugin %q global settings: %w", pluginKey, err))
	}

	if err := user.Verify(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("plugin %q user settings: %w", pluginKey, err))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	f := &Facet{
		plugin: pluginKey,
		global: global.Clone(),
		user:   user.Clone(),
		store:  store,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// PluginKey returns the identifier of the owning plugin.
func (f *Facet) PluginKey() string {
	return f.plugin
}

// HasSettings reports whether the plugin declares any setting.
func (f *Facet) HasSettings() bool {
	return len(f.global) > 0 || len(f.user) > 0
}

// GlobalDefinitions returns a copy of the declared global settings.
func (f *Facet) GlobalDefinitions() definition.Map {
	return f.global.Clone()
}

// UserDefinitions returns a copy of the declared user settings.
func (f *Facet) UserDefinitions() definition.Map {
	return f.user.Clone()
}

// GetSetting returns the effective global value of key: the persisted value,
// else the declared default, else the Backup option.
func (f *Facet) GetSetting(ctx context.Context, key string, opts ...ReadOption) (string, error) {
	def, ok := f.global[key]
	if !ok {
		return "", fmt.Errorf("%w: plugin %q global setting %q", ErrUnknownSettingKey, f.plugin, key)
	}

	return f.read(ctx, cache.GlobalKey(f.plugin, key), def, opts, func(ctx context.Context) (string, error) {
		return f.store.GetGlobal(ctx, f.plugin, key)
	})
}

// GetUserSetting is GetSetting for the value of key owned by user.
func (f *Facet) GetUserSetting(ctx context.Context, key string, user User, opts ...ReadOption) (string, error) {
	def, ok := f.user[key]
	if !ok {
		return "", fmt.Errorf("%w: plugin %q user setting %q", ErrUnknownSettingKey, f.plugin, key)
	}

	userID := user.GetID()

	return f.read(ctx, cache.UserKey(f.plugin, userID, key), def, opts, func(ctx context.Context) (string, error) {
		return f.store.GetUser(ctx, f.plugin, userID, key)
	})
}

// SetSetting validates and persists the global value of key.
// A plugin that has no durable identity yet is logged and skipped.
func (f *Facet) SetSetting(ctx context.Context, key, value string) error {
	def, ok := f.global[key]
	if !ok {
		return fmt.Errorf("%w: plugin %q global setting %q", ErrUnknownSettingKey, f.plugin, key)
	}

	return f.write(ctx, cache.GlobalKey(f.plugin, key), def, value, func(pluginID uint64) error {
		return f.store.SetGlobal(ctx, pluginID, key, value)
	})
}

// SetUserSetting validates and persists the value of key owned by user.
func (f *Facet) SetUserSetting(ctx context.Context, key, value string, user User) error {
	def, ok := f.user[key]
	if !ok {
		return fmt.Errorf("%w: plugin %q user setting %q", ErrUnknownSettingKey, f.plugin, key)
	}

	userID := user.GetID()

	return f.write(ctx, cache.UserKey(f.plugin, userID, key), def, value, func(pluginID uint64) error {
		return f.store.SetUser(ctx, pluginID, userID, key, value)
	})
}

// CheckSettings reports the required global settings that resolve to an empty
// value, in key order. The plugin must be registered before it is called.
func (f *Facet) CheckSettings(ctx context.Context) (bool, []string, error) {
	var missing []string

	for _, key := range f.global.Keys() {
		def := f.global[key]
		if !def.Required {
			continue
		}

		value, err := f.GetSetting(ctx, key)
		if err != nil {
			return false, nil, err
		}

		if value == "" {
			missing = append(missing, key)
		}
	}

	return len(missing) == 0, missing, nil
}

// GetSettingsDict returns the effective value of every declared global setting.
// Persisted records of undeclared keys are ignored.
func (f *Facet) GetSettingsDict(ctx context.Context) (map[string]string, error) {
	stored, err := f.store.ListGlobal(ctx, f.plugin)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(f.global))

	for key, def := range f.global {
		if value, ok := stored[key]; ok {
			out[key] = value
			continue
		}

		out[key] = def.Default
	}

	return out, nil
}

func (f *Facet) read(
	ctx context.Context,
	k cache.Key,
	def definition.Definition,
	opts []ReadOption,
	load func(context.Context) (string, error),
) (string, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	var (
		value string
		err   error
	)

	if o.cache && f.cache != nil {
		value, err = f.readCached(ctx, k, load)
	} else {
		value, err = load(ctx)
	}

	switch {
	case errors.Is(err, setting.ErrSettingNotFound):
		if def.HasDefault() {
			return def.Default, nil
		}

		return o.backup, nil
	case err != nil:
		return "", err
	}

	return value, nil
}

// readCached serves k from the cache. Concurrent misses of one key share a
// single store read, which is not cancelled with the caller that started it.
func (f *Facet) readCached(ctx context.Context, k cache.Key, load func(context.Context) (string, error)) (string, error) {
	if value, ok := f.cache.Read(k); ok {
		return value, nil
	}

	loadCtx := context.WithoutCancel(ctx)

	v, err, _ := f.loads.Do(k.String(), func() (interface{}, error) {
		version := f.cache.Version()

		value, err := load(loadCtx)
		if err != nil {
			return "", err
		}

		if !f.cache.PopulateIfVersion(k, value, version) {
			log.Debug().Str("plugin", k.Plugin).Stringer("key", k).Msg("setting changed while loading, not cached")
		}

		return value, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil //nolint:forcetypeassert
}

func (f *Facet) write(
	ctx context.Context,
	k cache.Key,
	def definition.Definition,
	value string,
	persist func(pluginID uint64) error,
) error {
	cfg, err := f.store.PluginConfig(ctx, f.plugin)
	if err != nil {
		if errors.Is(err, ErrMissingPluginIdentity) {
			log.Error().Str("plugin", f.plugin).Stringer("key", k).Msg("plugin configuration not found, setting not saved")
			return nil
		}

		return err
	}

	if err := def.Check(value); err != nil {
		return fmt.Errorf("plugin %q setting %q: %w", f.plugin, k.Key, err)
	}

	if err := persist(cfg.ID); err != nil {
		return err
	}

	if f.cache != nil {
		f.cache.Invalidate(k)
		// reads started from now on must not join a load begun before the write
		f.loads.Forget(k.String())
	}

	log.Debug().Str("plugin", f.plugin).Stringer("key", k).Msg("setting saved")

	return nil
}
