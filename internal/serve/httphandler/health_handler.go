package httphandler

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/classterra/school-platform-backend/db"
	"github.com/classterra/school-platform-backend/internal/serve/httperror"
)

// HealthHandler implements a health check endpoint
type HealthHandler struct {
	Version          string
	GitCommit        string
	DBConnectionPool db.DBConnectionPool
}

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GitCommit string `json:"commit,omitempty"`
}

func (h HealthHandler) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if err := h.DBConnectionPool.Ping(req.Context()); err != nil {
		httperror.NewHTTPError(http.StatusServiceUnavailable, "Database unreachable.", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, HealthResponse{
		Status:    "pass",
		Version:   h.Version,
		GitCommit: h.GitCommit,
	})
}
