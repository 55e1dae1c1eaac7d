package logger

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewGrpcUnaryServerInterceptor는 unary 메서드 로깅 인터셉터를 생성합니다.
func NewGrpcUnaryServerInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		startTime := time.Now()
		resp, err := handler(ctx, req)
		logCall(logger, info.FullMethod, err, time.Since(startTime))
		return resp, err
	}
}

// NewGrpcStreamServerInterceptor는 스트리밍 메서드 로깅 인터셉터를 생성합니다.
func NewGrpcStreamServerInterceptor(logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		startTime := time.Now()
		err := handler(srv, ss)
		logCall(logger, info.FullMethod, err, time.Since(startTime))
		return err
	}
}

func logCall(logger *zap.Logger, fullMethod string, err error, duration time.Duration) {
	code := status.Code(err)
	fields := []zap.Field{
		zap.String("grpc.service", path.Dir(fullMethod)[1:]),
		zap.String("grpc.method", path.Base(fullMethod)),
		zap.String("grpc.code", code.String()),
		zap.Duration("grpc.duration", duration),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Log(levelFor(code), "gRPC call finished", fields...)
}

// levelFor 일시적인 실패는 Warn, 그 외 실패는 Error
func levelFor(code codes.Code) zapcore.Level {
	switch code {
	case codes.OK:
		return zapcore.InfoLevel
	case codes.Canceled, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Unavailable, codes.NotFound, codes.InvalidArgument:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
