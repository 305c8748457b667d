package httphandler

import (
	"context"
	"net/http"

	"github.com/classterra/school-platform-backend/internal/auth"
	"github.com/classterra/school-platform-backend/internal/serve/middleware"
)

// requestWithTokenUser injects the authenticated user into the request context the same
// way AuthenticateMiddleware does.
func requestWithTokenUser(req *http.Request, tokenUser *auth.TokenUser) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserContextKey, tokenUser)
	return req.WithContext(ctx)
}
