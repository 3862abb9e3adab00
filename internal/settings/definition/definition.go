// Package definition describes the settings a plugin declares: key, default value
// and the rules a value has to satisfy before it is persisted.
package definition

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
)

const (
	// MaxKeyLength is the longest key a setting record can hold, in characters.
	MaxKeyLength = 50
	// MaxValueLength is the longest value a setting record can hold, in characters.
	MaxValueLength = 2000
)

var (
	// ErrInvalidValue is returned when a value fails the rules of its definition.
	ErrInvalidValue = errors.New("invalid setting value")
	// ErrInvalidDefinition is returned when a definition map can not be used.
	ErrInvalidDefinition = errors.New("invalid setting definition")
)

var validate = validator.New()

// Scope separates global values from per user values.
type Scope uint8

const (
	// ScopeGlobal is a value shared by the whole process.
	ScopeGlobal Scope = iota + 1
	// ScopeUser is a value owned by a single user.
	ScopeUser
)

// String implements fmt.Stringer.
func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeUser:
		return "user"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// Validator is a predicate run against a value before it is written.
type Validator func(value string) error

// Definition is the static declaration of a single setting.
type Definition struct {
	// Name is the human readable name of the setting.
	Name string `mapstructure:"name"`
	// Description explains what the setting controls.
	Description string `mapstructure:"description"`
	// Default is returned when no record is persisted. Empty means no default.
	Default string `mapstructure:"default"`
	// Required marks settings that must resolve to a non-empty value.
	Required bool `mapstructure:"required"`
	// Choices restricts the value to one of the listed strings when not empty.
	Choices []string `mapstructure:"choices"`
	// Units is a display hint, e.g. "seconds".
	Units string `mapstructure:"units"`
	// Hidden settings are not shown in catalogs meant for end users.
	Hidden bool `mapstructure:"hidden"`
	// Validate is a go-playground/validator tag applied to the value, e.g. "url" or "numeric,min=1".
	Validate string `mapstructure:"validate"`
	// Validators are additional predicates, only available to plugins declared in code.
	Validators []Validator `mapstructure:"-"`
}

// HasDefault reports whether the definition carries a default value.
func (d Definition) HasDefault() bool {
	return d.Default != ""
}

// Check runs every rule of the definition against value.
// The returned error wraps ErrInvalidValue.
func (d Definition) Check(value string) error {
	if utf8.RuneCountInString(value) > MaxValueLength {
		return fmt.Errorf("%w: value exceeds %d characters", ErrInvalidValue, MaxValueLength)
	}

	if len(d.Choices) > 0 && !slices.Contains(d.Choices, value) {
		return fmt.Errorf("%w: %q is not one of %v", ErrInvalidValue, value, d.Choices)
	}

	if d.Validate != "" {
		if err := validate.Var(value, d.Validate); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
	}

	for _, v := range d.Validators {
		if err := v(value); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
	}

	return nil
}

// Map holds the definitions of one scope of one plugin, indexed by key.
type Map map[string]Definition

// Keys returns the declared keys in lexical order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Clone returns a copy of m that shares no map storage with it.
func (m Map) Clone() Map {
	if m == nil {
		return Map{}
	}

	out := make(Map, len(m))
	for k, d := range m {
		d.Choices = slices.Clone(d.Choices)
		d.Validators = slices.Clone(d.Validators)
		out[k] = d
	}

	return out
}

// Verify checks every definition of the map and reports all problems at once.
// A default value has to satisfy the rules of its own definition.
func (m Map) Verify() error {
	var errs *multierror.Error

	for _, key := range m.Keys() {
		d := m[key]

		switch {
		case key == "":
			errs = multierror.Append(errs, fmt.Errorf("%w: empty key", ErrInvalidDefinition))
			continue
		case utf8.RuneCountInString(key) > MaxKeyLength:
			errs = multierror.Append(errs, fmt.Errorf("%w: key %q exceeds %d characters",
				ErrInvalidDefinition, key, MaxKeyLength))

			continue
		}

		if d.Validate != "" {
			if err := checkTag(d.Validate); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%w: key %q: %w", ErrInvalidDefinition, key, err))
				continue
			}
		}

		if d.HasDefault() {
			if err := d.Check(d.Default); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%w: default of key %q: %w",
					ErrInvalidDefinition, key, err))
			}
		}
	}

	return errs.ErrorOrNil()
}

// checkTag turns the panic validator raises for an unknown tag into an error.
func checkTag(tag string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bad validate tag %q: %v", tag, r)
		}
	}()

	_ = validate.Var("", tag)

	return nil
}
