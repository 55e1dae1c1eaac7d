package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger는 gorm logger.Interface를 zap으로 구현합니다.
type GormLogger struct {
	logger *zap.Logger
	// LogLevel 기록할 최소 레벨
	LogLevel gormlogger.LogLevel
	// SlowThreshold 이 시간보다 긴 쿼리는 Warn으로 기록합니다. 0이면 사용하지 않습니다.
	SlowThreshold time.Duration
	// IgnoreRecordNotFoundError true이면 gorm.ErrRecordNotFound는 기록하지 않습니다.
	IgnoreRecordNotFoundError bool
}

// NewGormLogger는 zap 기반 GORM 로거를 생성합니다.
func NewGormLogger(logger *zap.Logger, level gormlogger.LogLevel, slowThreshold time.Duration, ignoreRecordNotFound bool) *GormLogger {
	return &GormLogger{
		logger:                    logger.WithOptions(zap.AddCallerSkip(3)),
		LogLevel:                  level,
		SlowThreshold:             slowThreshold,
		IgnoreRecordNotFoundError: ignoreRecordNotFound,
	}
}

// GormLevel은 문자열 로그 레벨을 GORM 레벨로 변환합니다.
func GormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "error":
		return gormlogger.Error
	case "silent":
		return gormlogger.Silent
	default:
		return gormlogger.Warn
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		l.logger.Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		l.logger.Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		l.logger.Sugar().Errorf(msg, data...)
	}
}

// Trace는 실행된 SQL, 소요 시간, 영향 받은 행 수를 기록합니다.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && l.LogLevel >= gormlogger.Error && (!l.IgnoreRecordNotFoundError || !errors.Is(err, gorm.ErrRecordNotFound)):
		sql, rows := fc()
		l.logger.Error("GORM query error",
			zap.Error(err),
			zap.Duration("elapsed", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		sql, rows := fc()
		l.logger.Warn("GORM slow query",
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", l.SlowThreshold),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
	case l.LogLevel >= gormlogger.Info:
		sql, rows := fc()
		l.logger.Debug("GORM query",
			zap.Duration("elapsed", elapsed),
			zap.String("sql", sql),
			zap.Int64("rows", rows),
		)
	}
}
