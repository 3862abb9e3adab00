// Package settings gives plugins typed, validated and optionally cached access
// to their global and per user settings.
//
// A plugin declares its settings as two definition.Map values and receives a
// Facet. Reads fall back from the persisted record to the declared default and
// finally to a caller supplied backup value. Writes are validated against the
// declaration, persisted through an upsert and invalidate the cache before they
// return.
package settings
