package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// 빌링 서비스 에러 코드
const (
	ErrInternal            = "INTERNAL"
	ErrNotFound            = "NOT_FOUND"
	ErrInvalidArgument     = "INVALID_ARGUMENT"
	ErrUnauthenticated     = "UNAUTHENTICATED"
	ErrRateLimited         = "RATE_LIMITED"
	ErrInsufficientCredits = "INSUFFICIENT_CREDITS"
	ErrProviderUnavailable = "PROVIDER_UNAVAILABLE"
)

// codeSpec 코드별 HTTP 상태, gRPC 코드, 기본 사용자 메시지
type codeSpec struct {
	httpStatus int
	grpcCode   codes.Code
	message    string
}

var codeSpecs = map[string]codeSpec{
	ErrInternal:            {http.StatusInternalServerError, codes.Internal, "Internal server error"},
	ErrNotFound:            {http.StatusNotFound, codes.NotFound, "Resource not found"},
	ErrInvalidArgument:     {http.StatusBadRequest, codes.InvalidArgument, "Invalid request"},
	ErrUnauthenticated:     {http.StatusUnauthorized, codes.Unauthenticated, "Authentication required"},
	ErrRateLimited:         {http.StatusTooManyRequests, codes.ResourceExhausted, "Too many requests"},
	ErrInsufficientCredits: {http.StatusPaymentRequired, codes.FailedPrecondition, "Insufficient credits"},
	ErrProviderUnavailable: {http.StatusBadGateway, codes.Unavailable, "Payment provider request failed"},
}

// 알 수 없는 코드는 INTERNAL로 취급합니다
func specOf(code string) codeSpec {
	if spec, ok := codeSpecs[code]; ok {
		return spec
	}
	return codeSpecs[ErrInternal]
}

// HTTPStatus는 에러 코드에 대응하는 HTTP 상태 코드를 반환합니다
func HTTPStatus(code string) int {
	return specOf(code).httpStatus
}

// GRPCCode는 에러 코드에 대응하는 gRPC 코드를 반환합니다
func GRPCCode(code string) codes.Code {
	return specOf(code).grpcCode
}

// DefaultMessage는 코드의 기본 사용자 메시지입니다
func DefaultMessage(code string) string {
	return specOf(code).message
}
