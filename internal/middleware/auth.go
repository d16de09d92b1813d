package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"castlist-be/internal/auth"
	"castlist-be/pkg/errors"
	"castlist-be/pkg/logger"

	"github.com/google/uuid"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// ActorContextKey is the key for the authenticated actor id in context
	ActorContextKey ContextKey = "actor"
	// RequestIDContextKey is the key for request ID in context
	RequestIDContextKey ContextKey = "request_id"
)

// ActorID extracts the authenticated actor id from the context, empty when
// the request was not authenticated.
func ActorID(ctx context.Context) string {
	actorID, _ := ctx.Value(ActorContextKey).(string)
	return actorID
}

// Auth creates an authentication middleware validating bearer JWTs.
func Auth(jwtManager *auth.JWTManager, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Authorization header is required"), logger)
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid authorization header format"), logger)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == "" {
				writeErrorResponse(w, errors.NewAuthenticationError("Token is required"), logger)
				return
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				logger.WithError(err).Warn("Token validation failed")
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			ctx := context.WithValue(r.Context(), ActorContextKey, claims.ActorID)
			r = r.WithContext(ctx)

			logger.WithField("actor_id", claims.ActorID).Debug("Actor authenticated successfully")

			next.ServeHTTP(w, r)
		})
	}
}

// RequestID creates a middleware that adds a unique request ID to each request
func RequestID(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r)
		})
	}
}

// writeErrorResponse writes an error response to the client
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError, logger *logger.Logger) {
	logger.WithError(appErr).Error("Request error")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Message = appErr.Message
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode error response")
	}
}
