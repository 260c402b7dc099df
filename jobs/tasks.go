// Package jobs contains the background task definitions and the Asynq
// worker that runs them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan marks invoices past their due date as overdue.
	TaskOverdueScan = "billing:overdue_scan"
)

// OverdueScanPayload narrows the scan to one company; empty means all.
type OverdueScanPayload struct {
	CompanyID string `json:"company_id,omitempty"`
}

// NewOverdueScanTask constructs an Asynq task.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}
