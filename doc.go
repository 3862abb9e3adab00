// Package main provides the entry point of plugin-settings.
// It reads the plugin manifest from etc/main.toml, keeps the durable identity
// of every plugin in the database and lets operators read, write, check and
// list the global and per user settings the plugins declare. Values are
// persisted with gorm in SQLite, MySQL or PostgreSQL and optionally cached in
// memory.
package main
