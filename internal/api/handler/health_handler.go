package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

type livenessResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Liveness handles GET /api/health. It answers 200 whenever the process is up.
//
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  livenessResponse
// @Router       /api/health [get]
func Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, livenessResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Message:   "Blue Carbon Registry API is running",
	})
}

// Check probes one dependency.
type Check func(ctx context.Context) error

// ReadinessHandler handles GET /api/health/ready.
// Runs every named check before declaring the service ready.
type ReadinessHandler struct {
	checks map[string]Check
}

func NewReadinessHandler(checks map[string]Check) *ReadinessHandler {
	return &ReadinessHandler{checks: checks}
}

type dependencyStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string             `json:"status"`
	Dependencies []dependencyStatus `json:"dependencies"`
}

// Readiness reports 200 when every dependency answers and 503 otherwise.
//
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200  {object}  readinessResponse
// @Failure      503  {object}  readinessResponse
// @Router       /api/health/ready [get]
func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]dependencyStatus, 0, len(names))
	healthy := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			deps = append(deps, dependencyStatus{Name: name, Status: "unhealthy", Error: err.Error()})
			healthy = false
			continue
		}
		deps = append(deps, dependencyStatus{Name: name, Status: "ok"})
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
