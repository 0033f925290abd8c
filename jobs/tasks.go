// Package jobs hosts the asynq background worker and its task handlers.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMembershipSweep closes committee memberships whose validity
	// window has passed.
	TaskMembershipSweep = "membership:sweep"
	// TaskAuditPrune removes audit rows older than the retention window.
	TaskAuditPrune = "audit:prune"
)

// MembershipSweepPayload configures one sweep run.
type MembershipSweepPayload struct {
	// AsOf is the reference date; zero means "today".
	AsOf time.Time `json:"as_of"`
}

// NewMembershipSweepTask constructs an asynq task for the sweep.
func NewMembershipSweepTask(payload MembershipSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMembershipSweep, data), nil
}

// AuditPrunePayload configures one prune run.
type AuditPrunePayload struct {
	Retention time.Duration `json:"retention"`
}

// NewAuditPruneTask constructs an asynq task for the prune.
func NewAuditPruneTask(payload AuditPrunePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPrune, data), nil
}
