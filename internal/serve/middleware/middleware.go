package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/classterra/school-platform-backend/internal/auth"
	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/monitor"
	"github.com/classterra/school-platform-backend/internal/serve/httperror"
	"github.com/classterra/school-platform-backend/internal/utils"
)

type ContextKey string

const (
	TokenContextKey ContextKey = "auth_token"
	UserContextKey  ContextKey = "auth_user"
)

// RecoverHandler is a middleware that recovers from panics and logs the error.
func RecoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("panic: %v", r)
			}

			// No need to recover when the client has disconnected:
			if errors.Is(err, http.ErrAbortHandler) {
				panic(err)
			}

			ctx := req.Context()
			log.WithContext(ctx).WithError(err).Error("recovered from panic")
			httperror.InternalError(ctx, "", err, nil).Render(rw)
		}()

		next.ServeHTTP(rw, req)
	})
}

// MetricsRequestHandler is a middleware that monitors http requests, and export the data
// to the metrics server
func MetricsRequestHandler(monitorService monitor.MonitorServiceInterface) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			mw := middleware.NewWrapResponseWriter(rw, req.ProtoMajor)
			then := time.Now()
			next.ServeHTTP(mw, req)

			duration := time.Since(then)

			labels := monitor.HTTPRequestLabels{
				Status: fmt.Sprintf("%d", mw.Status()),
				Route:  utils.GetRoutePattern(req),
				Method: req.Method,
			}

			err := monitorService.MonitorHttpRequestDuration(duration, labels)
			if err != nil {
				log.WithContext(req.Context()).Errorf("Error trying to monitor request time: %s", err)
			}
		})
	}
}

// AuthenticateMiddleware is a middleware that validates the Authorization header for
// authenticated endpoints.
func AuthenticateMiddleware(jwtManager auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			authHeader := req.Header.Get("Authorization")
			if authHeader == "" {
				httperror.Unauthorized("", nil, nil).Render(rw)
				return
			}

			authHeaderParts := strings.Split(authHeader, " ")
			if len(authHeaderParts) != 2 || !strings.EqualFold(authHeaderParts[0], "Bearer") {
				httperror.Unauthorized("", nil, nil).Render(rw)
				return
			}

			ctx := req.Context()
			token := authHeaderParts[1]
			tokenUser, err := jwtManager.GetUserFromToken(ctx, token)
			if err != nil {
				if !errors.Is(err, auth.ErrInvalidToken) {
					err = fmt.Errorf("error validating auth token: %w", err)
					log.WithContext(ctx).Error(err)
				}
				httperror.Unauthorized("", nil, nil).Render(rw)
				return
			}

			// Add the token and the user to the request context
			ctx = context.WithValue(ctx, TokenContextKey, token)
			ctx = context.WithValue(ctx, UserContextKey, tokenUser)

			req = req.WithContext(ctx)

			next.ServeHTTP(rw, req)
		})
	}
}

// GetTokenUserFromContext returns the authenticated user stored in the request context by
// AuthenticateMiddleware.
func GetTokenUserFromContext(ctx context.Context) (*auth.TokenUser, bool) {
	tokenUser, ok := ctx.Value(UserContextKey).(*auth.TokenUser)
	return tokenUser, ok
}

// AnyRoleMiddleware validates if the user has at least one of the required roles to request
// the current endpoint.
func AnyRoleMiddleware(requiredRoles ...data.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			ctx := req.Context()

			tokenUser, ok := GetTokenUserFromContext(ctx)
			if !ok {
				httperror.Unauthorized("", nil, nil).Render(rw)
				return
			}

			// Accessible by all users
			if len(requiredRoles) == 0 {
				next.ServeHTTP(rw, req)
				return
			}

			for _, role := range requiredRoles {
				if tokenUser.Role == string(role) {
					next.ServeHTTP(rw, req)
					return
				}
			}

			httperror.Forbidden("", nil, nil).Render(rw)
		})
	}
}

func CorsMiddleware(corsAllowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		cors := cors.New(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedHeaders: []string{"*"},
			AllowedMethods: []string{"GET", "PUT", "POST", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		})

		return cors.Handler(next)
	}
}

// RateLimitMiddleware limits each client IP to requestLimit requests per windowLength.
func RateLimitMiddleware(requestLimit int, windowLength time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requestLimit,
		windowLength,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(rw http.ResponseWriter, req *http.Request) {
			httperror.NewHTTPError(http.StatusTooManyRequests, "Rate limit exceeded, try again later.", nil, nil).Render(rw)
		}),
	)
}

// LoggingMiddleware is a middleware that logs requests to the logger.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		mw := middleware.NewWrapResponseWriter(rw, req.ProtoMajor)

		entry := log.WithFields(log.Fields{
			"subsys":    "http",
			"method":    req.Method,
			"path":      req.URL.String(),
			"req":       middleware.GetReqID(req.Context()),
			"ip":        req.RemoteAddr,
			"host":      req.Host,
			"useragent": req.Header.Get("User-Agent"),
		})

		entry.Info("starting request")
		started := time.Now()

		next.ServeHTTP(mw, req)

		entry.WithFields(log.Fields{
			"status":   mw.Status(),
			"bytes":    mw.BytesWritten(),
			"duration": time.Since(started),
			"route":    utils.GetRoutePattern(req),
		}).Info("finished request")
	})
}
