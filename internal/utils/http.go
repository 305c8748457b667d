package utils

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetRoutePattern returns the chi route pattern registered for the request, falling back
// to matching the raw path when the pattern is not resolved yet.
func GetRoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}

	routePath := r.URL.Path
	if r.URL.RawPath != "" {
		routePath = r.URL.RawPath
	}

	tctx := chi.NewRouteContext()
	if !rctx.Routes.Match(tctx, r.Method, routePath) {
		return "undefined"
	}

	return tctx.RoutePattern()
}
