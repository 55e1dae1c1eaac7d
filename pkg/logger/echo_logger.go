package logger

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"
)

// NewEchoRequestLogger는 zap으로 HTTP 요청/응답을 기록하는 미들웨어를 생성합니다.
func NewEchoRequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		HandleError:   true,
		LogLatency:    true,
		LogRemoteIP:   true,
		LogMethod:     true,
		LogURI:        true,
		LogRoutePath:  true,
		LogRequestID:  true,
		LogUserAgent:  true,
		LogStatus:     true,
		LogError:      true,
		LogHeaders:    []string{"Authorization", "Webhook-Id"},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("request.remote_ip", v.RemoteIP),
				zap.String("request.method", v.Method),
				zap.String("request.uri", v.URI),
				zap.String("request.route", v.RoutePath),
				zap.String("request.user_agent", v.UserAgent),
				zap.String("request.request_id", v.RequestID),
				zap.Int("response.status", v.Status),
				zap.Duration("response.latency", v.Latency),
			}
			if values := v.Headers["Authorization"]; len(values) > 0 {
				fields = append(fields, zap.String("request.authorization", maskToken(values[0])))
			}
			// 웹훅 재전송 추적용
			if values := v.Headers["Webhook-Id"]; len(values) > 0 {
				fields = append(fields, zap.String("webhook.id", values[0]))
			}
			if userID, ok := c.Get("user_id").(string); ok && userID != "" {
				fields = append(fields, zap.String("user.id", userID))
			}

			switch {
			case v.Error != nil && v.Status >= http.StatusInternalServerError:
				logger.Error("Request failed", append(fields, zap.Error(v.Error))...)
			case v.Status >= http.StatusBadRequest:
				logger.Warn("Client error", fields...)
			default:
				logger.Info("Request completed", fields...)
			}
			return nil
		},
	})
}

// maskToken Bearer 토큰은 앞뒤 일부만 남깁니다
func maskToken(val string) string {
	if len(val) > 15 {
		return val[:10] + "..." + val[len(val)-5:]
	}
	return "[MASKED]"
}

// WithEchoLogger는 Echo의 Logger와 에러 핸들러를 zap 기반으로 교체합니다.
func WithEchoLogger(e *echo.Echo, logger *zap.Logger) {
	e.Logger = NewEchoZapLogger(logger)

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		message := http.StatusText(code)
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			message = http.StatusText(code)
			if m, ok := he.Message.(string); ok && m != "" {
				message = m
			}
			if he.Internal != nil {
				err = he.Internal
			}
		}

		fields := []zap.Field{
			zap.Error(err),
			zap.Int("status", code),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
		}
		if code >= http.StatusInternalServerError {
			logger.Error("HTTP error", fields...)
		} else {
			logger.Debug("HTTP error", fields...)
		}

		if c.Response().Committed {
			return
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]interface{}{"error": message})
		}
		if err != nil {
			logger.Error("Failed to send error response", zap.Error(err))
		}
	}
}

// EchoZapLogger는 echo.Logger 인터페이스를 구현한 zap 래퍼입니다.
type EchoZapLogger struct {
	Logger *zap.Logger
}

// NewEchoZapLogger는 zap 로거를 echo.Logger로 감쌉니다.
func NewEchoZapLogger(logger *zap.Logger) *EchoZapLogger {
	return &EchoZapLogger{Logger: logger}
}

func (l *EchoZapLogger) Output() io.Writer {
	return &zapWriter{logger: l.Logger}
}

// 아래 설정 메서드는 zap에서 무시됩니다
func (l *EchoZapLogger) SetOutput(w io.Writer) {}
func (l *EchoZapLogger) Level() log.Lvl { return log.INFO }
func (l *EchoZapLogger) SetLevel(v log.Lvl) {}
func (l *EchoZapLogger) SetHeader(h string) {}
func (l *EchoZapLogger) Prefix() string { return "" }
func (l *EchoZapLogger) SetPrefix(p string) {}

func (l *EchoZapLogger) Print(i ...interface{}) { l.Logger.Sugar().Info(i...) }
func (l *EchoZapLogger) Printf(format string, i ...interface{}) { l.Logger.Sugar().Infof(format, i...) }
func (l *EchoZapLogger) Printj(j log.JSON) { l.Logger.Info("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Debug(i ...interface{}) { l.Logger.Sugar().Debug(i...) }
func (l *EchoZapLogger) Debugf(format string, i ...interface{}) { l.Logger.Sugar().Debugf(format, i...) }
func (l *EchoZapLogger) Debugj(j log.JSON) { l.Logger.Debug("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Info(i ...interface{}) { l.Logger.Sugar().Info(i...) }
func (l *EchoZapLogger) Infof(format string, i ...interface{}) { l.Logger.Sugar().Infof(format, i...) }
func (l *EchoZapLogger) Infoj(j log.JSON) { l.Logger.Info("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Warn(i ...interface{}) { l.Logger.Sugar().Warn(i...) }
func (l *EchoZapLogger) Warnf(format string, i ...interface{}) { l.Logger.Sugar().Warnf(format, i...) }
func (l *EchoZapLogger) Warnj(j log.JSON) { l.Logger.Warn("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Error(i ...interface{}) { l.Logger.Sugar().Error(i...) }
func (l *EchoZapLogger) Errorf(format string, i ...interface{}) { l.Logger.Sugar().Errorf(format, i...) }
func (l *EchoZapLogger) Errorj(j log.JSON) { l.Logger.Error("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Fatal(i ...interface{}) { l.Logger.Sugar().Fatal(i...) }
func (l *EchoZapLogger) Fatalf(format string, i ...interface{}) { l.Logger.Sugar().Fatalf(format, i...) }
func (l *EchoZapLogger) Fatalj(j log.JSON) { l.Logger.Fatal("json_message", zap.Any("json", j)) }
func (l *EchoZapLogger) Panic(i ...interface{}) { l.Logger.Sugar().Panic(i...) }
func (l *EchoZapLogger) Panicf(format string, i ...interface{}) { l.Logger.Sugar().Panicf(format, i...) }
func (l *EchoZapLogger) Panicj(j log.JSON) { l.Logger.Panic("json_message", zap.Any("json", j)) }

// zapWriter는 io.Writer를 zap Info 로그로 연결합니다.
type zapWriter struct {
	logger *zap.Logger
}

func (w *zapWriter) Write(p []byte) (n int, err error) {
	w.logger.Info(string(p))
	return len(p), nil
}
