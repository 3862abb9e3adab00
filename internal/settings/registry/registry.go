// Package registry is the process wide catalog of the settings declared by the
// enabled plugins. It is rebuilt as a whole whenever the set of enabled plugins
// changes and is never the source of setting values.
package registry

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings/definition"
)

// State of the registry.
type State uint8

const (
	// Inactive is the initial state and the state after Deactivate.
	Inactive State = iota
	// Active is the state after Activate.
	Active
)

// String implements fmt.Stringer.
func (s State) String() string {
	if s == Active {
		return "active"
	}

	return "inactive"
}

// Provider exposes the settings a plugin declares. *settings.Facet implements it.
type Provider interface {
	HasSettings() bool
	GlobalDefinitions() definition.Map
	UserDefinitions() definition.Map
}

// Plugin is one enabled plugin handed to Activate.
type Plugin struct {
	Key      string
	Settings Provider
}

// Snapshot is an immutable view of the catalog. Callers must not modify the maps.
type Snapshot struct {
	State  State
	Global map[string]definition.Map
	User   map[string]definition.Map
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		State:  Inactive,
		Global: map[string]definition.Map{},
		User:   map[string]definition.Map{},
	}
}

// Registry publishes snapshots. Activate and Deactivate exclude each other,
// readers never block and never see a partially built snapshot.
type Registry struct {
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

// New returns an inactive registry.
func New() *Registry {
	r := &Registry{}
	r.snap.Store(emptySnapshot())

	return r
}

// Activate replaces the catalog with the definitions of plugins. Plugins
// without settings are skipped. Nothing of a previous activation is kept.
func (r *Registry) Activate(plugins []Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.Debug().Int("plugins", len(plugins)).Msg("activating plugin settings")

	next := emptySnapshot()
	next.State = Active

	for _, p := range plugins {
		if p.Settings == nil || !p.Settings.HasSettings() {
			continue
		}

		next.Global[p.Key] = p.Settings.GlobalDefinitions().Clone()
		next.User[p.Key] = p.Settings.UserDefinitions().Clone()
	}

	r.snap.Store(next)
}

// Deactivate clears both catalogs.
func (r *Registry) Deactivate() {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.Debug().Msg("deactivating plugin settings")

	r.snap.Store(emptySnapshot())
}

// Snapshot returns the current catalog.
func (r *Registry) Snapshot() *Snapshot {
	return r.snap.Load()
}

// State returns the current state.
func (r *Registry) State() State {
	return r.Snapshot().State
}

// Plugins returns the keys of the plugins in the catalog in lexical order.
func (r *Registry) Plugins() []string {
	snap := r.Snapshot()

	keys := make([]string, 0, len(snap.Global))
	for k := range snap.Global {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// GlobalDefinitions returns a copy of the global definitions of a plugin.
func (r *Registry) GlobalDefinitions(plugin string) (definition.Map, bool) {
	defs, ok := r.Snapshot().Global[plugin]
	if !ok {
		return nil, false
	}

	return defs.Clone(), true
}

// UserDefinitions returns a copy of the user definitions of a plugin.
func (r *Registry) UserDefinitions(plugin string) (definition.Map, bool) {
	defs, ok := r.Snapshot().User[plugin]
	if !ok {
		return nil, false
	}

	return defs.Clone(), true
}

// Definition looks up a single definition.
func (r *Registry) Definition(scope definition.Scope, plugin, key string) (definition.Definition, bool) {
	snap := r.Snapshot()

	var defs definition.Map

	switch scope {
	case definition.ScopeGlobal:
		defs = snap.Global[plugin]
	case definition.ScopeUser:
		defs = snap.User[plugin]
	default:
		return definition.Definition{}, false
	}

	d, ok := defs[key]

	return d, ok
}
