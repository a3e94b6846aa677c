// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/hanifmaulana/distrolink/app/dto"
	"github.com/hanifmaulana/distrolink/app/services"
	businessflow "github.com/hanifmaulana/distrolink/business_flow"
	"github.com/gofiber/fiber/v3"
)

// AuthMiddleware handles JWT token validation for protected endpoints
type AuthMiddleware struct {
	tokenService services.TokenService
	deviceFlow   businessflow.DeviceFlow
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(tokenService services.TokenService, deviceFlow businessflow.DeviceFlow) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		deviceFlow:   deviceFlow,
	}
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: code,
		},
	})
}

// extractBearerToken pulls the token out of the Authorization header
func extractBearerToken(c fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.New("bad format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", errors.New("empty token")
	}
	return token, nil
}

// Authenticate validates the user JWT and stores the user id in Locals
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, err := extractBearerToken(c)
		if err != nil {
			return unauthorized(c, "Authorization header is required", "MISSING_AUTHORIZATION_HEADER")
		}

		claims, err := m.tokenService.ValidateToken(token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				return unauthorized(c, "Access token has expired", "TOKEN_EXPIRED")
			case errors.Is(err, services.ErrTokenRevoked):
				return unauthorized(c, "Access token has been revoked", "TOKEN_REVOKED")
			default:
				return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
			}
		}

		if claims.TokenType != "access" {
			return unauthorized(c, "Invalid access token", "TOKEN_INVALID")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("token_id", claims.TokenID)
		c.Locals("token_claims", claims)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

// DeviceAuthenticate validates the opaque device token presented by a
// PWA client via X-Device-Token and stores the device id in Locals
func (m *AuthMiddleware) DeviceAuthenticate() fiber.Handler {
	return func(c fiber.Ctx) error {
		token := c.Get("X-Device-Token")
		if token == "" {
			return unauthorized(c, "Device token is required", "MISSING_DEVICE_TOKEN")
		}

		device, err := m.deviceFlow.AuthenticateDevice(context.Background(), token)
		if err != nil {
			if businessflow.IsDeviceInactive(err) {
				return unauthorized(c, "Device is inactive", "DEVICE_INACTIVE")
			}
			return unauthorized(c, "Invalid device token", "DEVICE_TOKEN_INVALID")
		}

		c.Locals("device_id", device.ID)
		c.Locals("device_user_id", device.UserID)

		return c.Next()
	}
}
