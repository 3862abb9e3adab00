// Package daemon wires configuration, database, cache, plugin facets and the
// settings registry into one process.
package daemon

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/config"
	settingsdb "github.com/GoPowerDNS-Admin/plugin-settings/internal/db"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/db/controller/setting"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings/cache"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings/registry"
)

// ErrUnknownPlugin is returned for a plugin key missing from the manifest.
var ErrUnknownPlugin = errors.New("plugin is not declared in the manifest")

// Daemon owns the settings subsystem of the process.
type Daemon struct {
	cfg      *config.Config
	db       *gorm.DB
	store    *setting.Store
	cache    *cache.Cache
	registry *registry.Registry
	facets   map[string]*settings.Facet

	mu     sync.Mutex // guards active
	active map[string]bool
}

// New creates a Daemon from cfg: it opens and migrates the database, registers
// the manifest plugins and activates the registry with the active ones.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	db, err := settingsdb.Open(cfg.DB)
	if err != nil {
		return nil, err
	}

	if err = settingsdb.Migrate(db); err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:      cfg,
		db:       db,
		store:    setting.New(db),
		registry: registry.New(),
		facets:   make(map[string]*settings.Facet, len(cfg.Plugins)),
		active:   make(map[string]bool, len(cfg.Plugins)),
	}

	var opts []settings.Option

	if cfg.Cache.Enabled {
		d.cache = cache.New(cfg.Cache.TTL, cfg.Cache.Capacity)
		go d.cache.Start()

		opts = append(opts, settings.WithCache(d.cache))
	}

	for key, p := range cfg.Plugins {
		f, err := settings.New(key, p.Settings, p.UserSettings, d.store, opts...)
		if err != nil {
			d.Close()
			return nil, err
		}

		d.facets[key] = f
		d.active[key] = p.Active
	}

	if err = seed(ctx, cfg, d.store); err != nil {
		d.Close()
		return nil, err
	}

	d.mu.Lock()
	d.activate()
	d.mu.Unlock()

	return d, nil
}

// activate rebuilds the registry from the active plugins. d.mu must be held.
func (d *Daemon) activate() {
	plugins := make([]registry.Plugin, 0, len(d.facets))

	for _, key := range d.Plugins() {
		if d.active[key] {
			plugins = append(plugins, registry.Plugin{Key: key, Settings: d.facets[key]})
		}
	}

	d.registry.Activate(plugins)

	log.Info().Int("plugins", len(plugins)).Msg("plugin settings activated")
}

// SetActive enables or disables a plugin and rebuilds the registry.
func (d *Daemon) SetActive(ctx context.Context, key string, active bool) error {
	if _, ok := d.facets[key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlugin, key)
	}

	name := d.cfg.Plugins[key].Name
	if _, err := d.store.RegisterPlugin(ctx, key, name, active); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.active[key] = active
	d.activate()

	return nil
}

// Facet returns the settings facet of a manifest plugin.
func (d *Daemon) Facet(key string) (*settings.Facet, error) {
	f, ok := d.facets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, key)
	}

	return f, nil
}

// Plugins returns the keys of all manifest plugins in lexical order.
func (d *Daemon) Plugins() []string {
	keys := make([]string, 0, len(d.facets))
	for k := range d.facets {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Registry returns the settings catalog.
func (d *Daemon) Registry() *registry.Registry {
	return d.registry
}

// Store returns the setting store.
func (d *Daemon) Store() *setting.Store {
	return d.store
}

// Close deactivates the registry, stops the cache and closes the database.
func (d *Daemon) Close() {
	d.registry.Deactivate()

	if d.cache != nil {
		d.cache.Stop()
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		log.Error().Err(err).Msg("can't access database connection pool")
		return
	}

	if err = sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("can't close database")
	}
}
