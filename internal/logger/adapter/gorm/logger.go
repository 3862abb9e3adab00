// Package gorm routes gorm's query logging through zerolog.
package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowThreshold is used when Config.SlowThreshold is zero.
const DefaultSlowThreshold = 200 * time.Millisecond

// Config of the gorm logger.
type Config struct {
	// SlowThreshold is the duration above which a query is logged as warning.
	SlowThreshold time.Duration

	// Logger overrides the global zerolog logger. Optional.
	Logger *zerolog.Logger
}

// Logger implements gorm's logger.Interface on top of zerolog.
type Logger struct {
	cfg   Config
	level gormlogger.LogLevel
}

// New creates a gorm logger writing to zerolog.
func New(cfg Config) *Logger {
	if cfg.SlowThreshold == 0 {
		cfg.SlowThreshold = DefaultSlowThreshold
	}

	return &Logger{cfg: cfg, level: gormlogger.Info}
}

func (l *Logger) logger() *zerolog.Logger {
	if l.cfg.Logger != nil {
		return l.cfg.Logger
	}

	return &log.Logger
}

// LogMode implements logger.Interface.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	out := *l
	out.level = level

	return &out
}

// Info implements logger.Interface.
func (l *Logger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.logger().Info().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Warn implements logger.Interface.
func (l *Logger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.logger().Warn().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Error implements logger.Interface.
func (l *Logger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.logger().Error().Str("component", "gorm").Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace implements logger.Interface.
// Failed queries are errors, slow queries are warnings and everything else is trace.
// A missing record is an expected outcome of lookups and is not an error.
func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	var event *zerolog.Event

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		event = l.logger().Error().Err(err)
	case elapsed > l.cfg.SlowThreshold && l.level >= gormlogger.Warn:
		event = l.logger().Warn().Dur("threshold", l.cfg.SlowThreshold)
	default:
		event = l.logger().Trace()
	}

	if !event.Enabled() {
		return
	}

	sql, rows := fc()

	event.Str("component", "gorm").
		Dur("elapsed", elapsed).
		Int64("rows", rows).
		Str("sql", sql).
		Msg("query")
}
