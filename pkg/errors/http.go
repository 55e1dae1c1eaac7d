package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"google.golang.org/grpc/status"
)

// ToHTTPError는 에러를 Echo HTTP 에러로 변환합니다.
// 5xx 응답은 코드의 기본 메시지만 내보냅니다.
func ToHTTPError(err error) *echo.HTTPError {
	if err == nil {
		return nil
	}

	if echoErr, ok := err.(*echo.HTTPError); ok {
		return echoErr
	}

	var appErr *AppError
	if !As(err, &appErr) {
		return echo.NewHTTPError(http.StatusInternalServerError, DefaultMessage(ErrInternal)).SetInternal(err)
	}

	httpStatus := HTTPStatus(appErr.Code())
	if httpStatus >= http.StatusInternalServerError {
		return echo.NewHTTPError(httpStatus, DefaultMessage(appErr.Code())).SetInternal(err)
	}
	return echo.NewHTTPError(httpStatus, appErr.Message()).SetInternal(err)
}

// ToGRPCError는 에러를 gRPC status 에러로 변환합니다
func ToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := CodeOf(err)
	message := DefaultMessage(code)
	var appErr *AppError
	if As(err, &appErr) && HTTPStatus(code) < http.StatusInternalServerError {
		message = appErr.Message()
	}
	return status.Error(GRPCCode(code), message)
}
