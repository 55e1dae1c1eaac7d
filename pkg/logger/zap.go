package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 로거 설정
type Config struct {
	// Level 로그 레벨 (debug, info, warn, error)
	Level string
	// Format 로그 포맷 (json, console)
	Format string
	// Output 출력 대상 (stdout, stderr, file)
	Output string
	// FilePath Output이 file일 때 사용할 경로
	FilePath string
	// Development 개발 모드 여부
	Development bool
	// Service 모든 로그에 붙는 서비스 이름
	Service string
}

// NewZapLogger 설정에 맞는 zap 로거를 생성합니다.
func NewZapLogger(config Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "@timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.LevelKey = "log.level"
	encoderConfig.MessageKey = "message"
	if config.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var encoder zapcore.Encoder
	if config.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	writeSyncer, err := openSink(config)
	if err != nil {
		return nil, err
	}

	logger := zap.New(zapcore.NewCore(encoder, writeSyncer, zap.NewAtomicLevelAt(level)),
		zap.AddStacktrace(zapcore.ErrorLevel))
	if config.Development {
		logger = logger.WithOptions(zap.AddCaller())
	}
	if config.Service != "" {
		logger = logger.With(zap.String("service", config.Service))
	}

	return logger, nil
}

func openSink(config Config) (zapcore.WriteSyncer, error) {
	switch config.Output {
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	case "file":
		if config.FilePath == "" {
			return zapcore.AddSync(os.Stdout), nil
		}
		file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		return zapcore.AddSync(file), nil
	default:
		return zapcore.AddSync(os.Stdout), nil
	}
}
