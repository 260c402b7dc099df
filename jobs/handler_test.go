package jobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/faktura-erp/faktura/internal/shared"
)

type fakeEnqueuer struct {
	payloads []OverdueScanPayload
	err      error
}

func (f *fakeEnqueuer) EnqueueOverdueScan(ctx context.Context, payload OverdueScanPayload) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.payloads = append(f.payloads, payload)
	return &asynq.TaskInfo{ID: "task-1"}, nil
}

func triggerRequest(companyID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/overdue-scan", nil)
	return req.WithContext(shared.ContextWithCompanyID(req.Context(), companyID))
}

func TestTriggerOverdueScanScopesToTenant(t *testing.T) {
	queue := &fakeEnqueuer{}
	h := NewHandler(slog.New(slog.DiscardHandler), queue)

	rec := httptest.NewRecorder()
	h.TriggerOverdueScan(rec, triggerRequest("company-1"))

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queue.payloads, 1)
	require.Equal(t, "company-1", queue.payloads[0].CompanyID)
	require.Contains(t, rec.Body.String(), "task-1")
}

func TestTriggerOverdueScanQueueDown(t *testing.T) {
	queue := &fakeEnqueuer{err: errors.New("dial tcp: connection refused")}
	h := NewHandler(slog.New(slog.DiscardHandler), queue)

	rec := httptest.NewRecorder()
	h.TriggerOverdueScan(rec, triggerRequest("company-1"))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Empty(t, queue.payloads)
}
