package errors

import (
	"go.uber.org/zap"
)

// LogError는 에러와 에러 코드를 구조화된 필드로 기록합니다
func LogError(logger *zap.Logger, err error, msg string, fields ...zap.Field) {
	if err == nil {
		return
	}

	allFields := make([]zap.Field, 0, len(fields)+2)
	allFields = append(allFields, zap.Error(err))

	var appErr *AppError
	if As(err, &appErr) {
		allFields = append(allFields, zap.String("error_code", appErr.Code()))
	}

	allFields = append(allFields, fields...)

	// 4xx는 Warn, 나머지는 Error
	if HTTPStatus(CodeOf(err)) < 500 {
		logger.Warn(msg, allFields...)
		return
	}
	logger.Error(msg, allFields...)
}
