package errors

import (
	"errors"
	"fmt"
)

// 표준 라이브러리 함수 재노출
var (
	Is = errors.Is
	As = errors.As
)

// AppError는 코드와 사용자용 메시지를 가진 애플리케이션 에러입니다.
// 원인 에러(err)는 로그에만 남고 응답에는 노출되지 않습니다.
type AppError struct {
	code    string
	message string
	err     error
}

func (e *AppError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s", e.Message(), e.err.Error())
	}
	return e.Message()
}

func (e *AppError) Code() string {
	return e.code
}

// Message는 사용자용 메시지를 반환합니다. 비어 있으면 코드의 기본 메시지
func (e *AppError) Message() string {
	if e.message == "" {
		return DefaultMessage(e.code)
	}
	return e.message
}

func (e *AppError) Unwrap() error {
	return e.err
}

// NewAppError는 새 애플리케이션 에러를 생성합니다
func NewAppError(code string, message string, err error) *AppError {
	return &AppError{
		code:    code,
		message: message,
		err:     err,
	}
}

// NotFound 리소스 없음
func NotFound(message string, err error) *AppError {
	return NewAppError(ErrNotFound, message, err)
}

// InvalidArgument 잘못된 요청 값
func InvalidArgument(message string, err error) *AppError {
	return NewAppError(ErrInvalidArgument, message, err)
}

// InsufficientCredits 잔여 크레딧 부족
func InsufficientCredits(message string, err error) *AppError {
	return NewAppError(ErrInsufficientCredits, message, err)
}

// ProviderUnavailable 결제사 호출 실패. 메시지는 항상 기본값을 씁니다
func ProviderUnavailable(err error) *AppError {
	return NewAppError(ErrProviderUnavailable, "", err)
}

// Wrap은 기존 에러를 래핑합니다. AppError인 경우 코드를 유지합니다
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return NewAppError(appErr.Code(), message, err)
	}

	return NewAppError(ErrInternal, message, err)
}

// CodeOf는 에러 체인에서 코드를 찾아 반환합니다. 없으면 ErrInternal
func CodeOf(err error) string {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Code()
	}
	return ErrInternal
}
