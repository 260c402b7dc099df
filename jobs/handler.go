package jobs

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
	"github.com/faktura-erp/faktura/internal/shared"
)

// Enqueuer submits background tasks to the queue.
type Enqueuer interface {
	EnqueueOverdueScan(ctx context.Context, payload OverdueScanPayload) (*asynq.TaskInfo, error)
}

// Handler exposes manual job triggers.
type Handler struct {
	logger *slog.Logger
	queue  Enqueuer
}

func NewHandler(logger *slog.Logger, queue Enqueuer) *Handler {
	return &Handler{logger: logger, queue: queue}
}

// MountRoutes registers the trigger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/overdue-scan", h.TriggerOverdueScan)
}

// TriggerOverdueScan enqueues an immediate overdue scan scoped to the tenant,
// ahead of the nightly cron run.
func (h *Handler) TriggerOverdueScan(w http.ResponseWriter, r *http.Request) {
	companyID := shared.CompanyIDFromContext(r.Context())

	info, err := h.queue.EnqueueOverdueScan(r.Context(), OverdueScanPayload{CompanyID: companyID})
	if err != nil {
		h.logger.Error("enqueue overdue scan", slog.String("company_id", companyID), slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "could not enqueue the scan")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": info.ID})
}
