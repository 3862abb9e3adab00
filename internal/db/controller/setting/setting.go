// Package setting persists plugin setting records: global values per plugin and
// per user values per plugin. Writes are unique constraint backed upserts, so
// concurrent writers of one identity never produce duplicate rows.
package setting

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/db/models"
)

var (
	// ErrSettingNotFound is returned when no record exists for the requested identity.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when a setting key is empty.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrPluginNotFound is returned when a plugin has no durable identity yet.
	ErrPluginNotFound = errors.New("plugin configuration not found")
	// ErrPluginKeyEmpty is returned when a plugin key is empty.
	ErrPluginKeyEmpty = errors.New("plugin key cannot be empty")
	// ErrUserIDZero is returned when a user setting is addressed without a user.
	ErrUserIDZero = errors.New("user id cannot be zero")
	// ErrUsernameEmpty is returned when a user is registered without a name.
	ErrUsernameEmpty = errors.New("username cannot be empty")
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrStorageUnavailable is returned when the database could not serve a query.
	// It always wraps the driver error as well.
	ErrStorageUnavailable = errors.New("setting storage unavailable")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Store reads and writes plugin setting records.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// unavailable marks err as a storage failure while keeping the cause.
func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

func (s *Store) conn(ctx context.Context) (*gorm.DB, error) {
	if s == nil || s.db == nil {
		return nil, ErrDBNil
	}

	return s.db.WithContext(ctx), nil
}

// RegisterPlugin creates or refreshes the durable identity of a plugin.
func (s *Store) RegisterPlugin(ctx context.Context, key, name string, active bool) (*models.PluginConfig, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	if key == "" {
		return nil, ErrPluginKeyEmpty
	}

	cfg := models.PluginConfig{Key: key, Name: name, Active: active}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "active", "updated_at"}),
	}).Create(&cfg).Error
	if err != nil {
		return nil, unavailable(err)
	}

	return s.PluginConfig(ctx, key)
}

// PluginConfig returns the durable identity of the plugin with the given key.
func (s *Store) PluginConfig(ctx context.Context, key string) (*models.PluginConfig, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	if key == "" {
		return nil, ErrPluginKeyEmpty
	}

	var cfg models.PluginConfig

	err = db.Where(&models.PluginConfig{Key: key}).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPluginNotFound
		}

		return nil, unavailable(err)
	}

	return &cfg, nil
}

// DeletePlugin removes a plugin identity. The database removes its setting
// records through the cascading foreign keys.
func (s *Store) DeletePlugin(ctx context.Context, key string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if key == "" {
		return ErrPluginKeyEmpty
	}

	result := db.Where(&models.PluginConfig{Key: key}).Delete(&models.PluginConfig{})
	if result.Error != nil {
		return unavailable(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrPluginNotFound
	}

	return nil
}

// RegisterUser returns the user named username, creating it when missing.
func (s *Store) RegisterUser(ctx context.Context, username string) (*models.User, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	if username == "" {
		return nil, ErrUsernameEmpty
	}

	var u models.User

	err = db.Where(&models.User{Username: username}).
		Attrs(models.User{Username: username}).
		FirstOrCreate(&u).Error
	if err != nil {
		return nil, unavailable(err)
	}

	return &u, nil
}

// DeleteUser removes a user. Its setting records are removed by the database.
func (s *Store) DeleteUser(ctx context.Context, userID uint64) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if userID == 0 {
		return ErrUserIDZero
	}

	result := db.Delete(&models.User{}, userID)
	if result.Error != nil {
		return unavailable(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// GetGlobal returns the persisted global value of key for the plugin.
func (s *Store) GetGlobal(ctx context.Context, pluginKey, key string) (string, error) {
	if key == "" {
		return "", ErrSettingNameEmpty
	}

	cfg, err := s.PluginConfig(ctx, pluginKey)
	if err != nil {
		if errors.Is(err, ErrPluginNotFound) {
			return "", ErrSettingNotFound
		}

		return "", err
	}

	var rec models.PluginSetting

	err = s.db.WithContext(ctx).
		Where(&models.PluginSetting{PluginID: cfg.ID, Key: key}).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSettingNotFound
		}

		return "", unavailable(err)
	}

	return rec.Value, nil
}

// ListGlobal returns every persisted global value of the plugin, indexed by key.
func (s *Store) ListGlobal(ctx context.Context, pluginKey string) (map[string]string, error) {
	cfg, err := s.PluginConfig(ctx, pluginKey)
	if err != nil {
		if errors.Is(err, ErrPluginNotFound) {
			return map[string]string{}, nil
		}

		return nil, err
	}

	var recs []models.PluginSetting

	err = s.db.WithContext(ctx).
		Where(&models.PluginSetting{PluginID: cfg.ID}).
		Find(&recs).Error
	if err != nil {
		return nil, unavailable(err)
	}

	out := make(map[string]string, len(recs))
	for _, rec := range recs {
		out[rec.Key] = rec.Value
	}

	return out, nil
}

// SetGlobal inserts or overwrites the global value of key for the plugin.
func (s *Store) SetGlobal(ctx context.Context, pluginID uint64, key, value string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if key == "" {
		return ErrSettingNameEmpty
	}

	rec := models.PluginSetting{PluginID: pluginID, Key: key, Value: value}

	err = db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "plugin_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return unavailable(err)
	}

	return nil
}

// GetUser returns the persisted value of key for the plugin and user.
func (s *Store) GetUser(ctx context.Context, pluginKey string, userID uint64, key string) (string, error) {
	if key == "" {
		return "", ErrSettingNameEmpty
	}

	if userID == 0 {
		return "", ErrUserIDZero
	}

	cfg, err := s.PluginConfig(ctx, pluginKey)
	if err != nil {
		if errors.Is(err, ErrPluginNotFound) {
			return "", ErrSettingNotFound
		}

		return "", err
	}

	var rec models.PluginUserSetting

	err = s.db.WithContext(ctx).
		Where(&models.PluginUserSetting{PluginID: cfg.ID, UserID: userID, Key: key}).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrSettingNotFound
		}

		return "", unavailable(err)
	}

	return rec.Value, nil
}

// SetUser inserts or overwrites the value of key for the plugin and user.
func (s *Store) SetUser(ctx context.Context, pluginID, userID uint64, key, value string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	if key == "" {
		return ErrSettingNameEmpty
	}

	if userID == 0 {
		return ErrUserIDZero
	}

	rec := models.PluginUserSetting{PluginID: pluginID, UserID: userID, Key: key, Value: value}

	err = db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "plugin_id"}, {Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return unavailable(err)
	}

	return nil
}
