package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const maxLoggedSQL = 1000

// GormLogger routes GORM output through zap. Unique violations and canceled
// queries are expected outcomes for the users store and log at warn, not error.
type GormLogger struct {
	log   *zap.Logger
	slow  time.Duration
	level gormlogger.LogLevel
}

// NewGormLogger creates a GORM logger that writes through zap. Queries slower than
// slowQuerySeconds are logged as warnings.
func NewGormLogger(l *zap.Logger, slowQuerySeconds float64, level string) *GormLogger {
	return &GormLogger{
		log:   l.Named("gorm"),
		slow:  time.Duration(slowQuerySeconds * float64(time.Second)),
		level: gormLevel(level),
	}
}

// gormLevel maps an application log level onto GORM's coarser scale
func gormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error", "dpanic", "panic", "fatal":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Info {
		WithContext(ctx, g.log).Info(fmt.Sprintf(msg, data...))
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Warn {
		WithContext(ctx, g.log).Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if g.level >= gormlogger.Error {
		WithContext(ctx, g.log).Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs one executed statement
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	if len(sql) > maxLoggedSQL {
		sql = sql[:maxLoggedSQL] + "..."
	}

	l := WithContext(ctx, g.log)
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrDuplicatedKey):
		l.Warn("gorm constraint violation", append(fields, zap.Error(err))...)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		l.Warn("gorm query aborted", append(fields, zap.Error(err))...)
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		l.Error("gorm query error", append(fields, zap.Error(err))...)
		return
	}

	if g.slow > 0 && elapsed > g.slow && g.level >= gormlogger.Warn {
		l.Warn("gorm slow query", append(fields, zap.Duration("threshold", g.slow))...)
		return
	}

	if g.level >= gormlogger.Info {
		l.Debug("gorm query", fields...)
	}
}
