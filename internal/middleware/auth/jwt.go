package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthUser is the caller identified by a session token.
type AuthUser struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type contextKey string

const userContextKey contextKey = "authenticated_user"

var errNoUser = errors.New("no authenticated user in context")

// sessionClaims is the token layout issued by the web app's auth layer.
type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type JWTConfig struct {
	Secret string
	Logger *zap.Logger
	// SkipPaths are path prefixes served without a token, e.g. /health.
	SkipPaths []string
}

// JWTMiddleware validates HS256 bearer tokens and stores the caller on the
// request context. The user id is the "sub" claim.
func JWTMiddleware(config JWTConfig) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (interface{}, error) {
		return []byte(config.Secret), nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if skipped(path, config.SkipPaths) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return reject(c, config.Logger, "MISSING_AUTH_HEADER", "Authorization header required", nil)
			}

			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || tokenString == "" {
				return reject(c, config.Logger, "INVALID_AUTH_FORMAT", "Invalid authorization header format. Expected: Bearer <token>", nil)
			}

			claims := &sessionClaims{}
			if _, err := parser.ParseWithClaims(tokenString, claims, keyFunc); err != nil {
				return reject(c, config.Logger, "INVALID_TOKEN", "Invalid or expired token", err)
			}
			if claims.Subject == "" {
				return reject(c, config.Logger, "MISSING_SUBJECT", "Token subject required", nil)
			}

			WithUser(c, &AuthUser{
				UserID: claims.Subject,
				Email:  claims.Email,
				Role:   claims.Role,
			})
			return next(c)
		}
	}
}

func skipped(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func reject(c echo.Context, logger *zap.Logger, code, message string, err error) error {
	fields := []zap.Field{
		zap.String("code", code),
		zap.String("method", c.Request().Method),
		zap.String("path", c.Request().URL.Path),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Warn("Request rejected by auth middleware", fields...)

	return c.JSON(http.StatusUnauthorized, echo.Map{
		"error": message,
		"code":  code,
	})
}

// WithUser stores an authenticated user on the request context
func WithUser(c echo.Context, user *AuthUser) {
	ctx := context.WithValue(c.Request().Context(), userContextKey, user)
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set("user_id", user.UserID)
}

func GetUserFromContext(c echo.Context) (*AuthUser, error) {
	user, ok := c.Request().Context().Value(userContextKey).(*AuthUser)
	if !ok || user == nil {
		return nil, errNoUser
	}
	return user, nil
}

// RequireAuth returns the caller, or a 401 error the handler can return as is.
func RequireAuth(c echo.Context) (*AuthUser, error) {
	user, err := GetUserFromContext(c)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return user, nil
}
