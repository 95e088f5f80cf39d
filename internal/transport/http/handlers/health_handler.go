package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/transport/http/dto"
	httperrors "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/transport/http/errors"
)

const readinessTimeout = 2 * time.Second

func Health(w http.ResponseWriter, _ *http.Request) {
	httperrors.Write(w, http.StatusOK, dto.HealthResponse{OK: true})
}

type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type ReadyHandler struct {
	checks []ReadinessCheck
}

func NewReadyHandler(checks ...ReadinessCheck) *ReadyHandler {
	return &ReadyHandler{checks: checks}
}

// Handle runs every dependency check and reports 503 if any of them fails.
func (h *ReadyHandler) Handle(w http.ResponseWriter, r *http.Request) {
	resp := dto.ReadinessResponse{OK: true, Checks: make(map[string]string, len(h.checks))}

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := check.Check(ctx)
		cancel()

		if err != nil {
			resp.OK = false
			resp.Checks[check.Name] = err.Error()
			continue
		}
		resp.Checks[check.Name] = "ok"
	}

	status := http.StatusOK
	if !resp.OK {
		status = http.StatusServiceUnavailable
	}
	httperrors.Write(w, status, resp)
}
