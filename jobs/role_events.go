package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/certa-platform/certa-permissions/internal/audit"
	jobmetrics "github.com/certa-platform/certa-permissions/internal/jobs"
)

// TaskRoleEvent is the task type for role grant mutations.
const TaskRoleEvent = "audit:role_event"

// NewRoleEventTask serialises a role event into an Asynq task.
func NewRoleEventTask(ev audit.RoleEvent) (*asynq.Task, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRoleEvent, payload, asynq.Queue(QueueDefault), asynq.MaxRetry(5)), nil
}

// RoleEvent enqueues one role event. It satisfies the permission service's
// audit recorder contract.
func (c *Client) RoleEvent(ctx context.Context, ev audit.RoleEvent) error {
	if c == nil || c.client == nil {
		return errors.New("jobs: client not configured")
	}
	task, err := NewRoleEventTask(ev)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task)
	return err
}

// EventWriter persists role events; the audit repository implements it.
type EventWriter interface {
	Insert(ctx context.Context, ev audit.RoleEvent) error
}

// RoleEventJob consumes role event tasks and writes them to the audit log.
type RoleEventJob struct {
	Writer  EventWriter
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewRoleEventJob initialises the handler.
func NewRoleEventJob(writer EventWriter, logger *slog.Logger, metrics *jobmetrics.Metrics) *RoleEventJob {
	return &RoleEventJob{Writer: writer, Logger: logger, Metrics: metrics}
}

// Handle persists one role event.
func (j *RoleEventJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Writer == nil {
		return errors.New("role event: handler not configured")
	}
	tracker := j.Metrics.Track("audit.role_event")
	var ev audit.RoleEvent
	if err := json.Unmarshal(t.Payload(), &ev); err != nil {
		// A malformed payload never becomes valid; do not retry.
		return tracker.End(asynq.SkipRetry)
	}
	if err := j.Writer.Insert(ctx, ev); err != nil {
		if j.Logger != nil {
			j.Logger.Error("persist role event",
				slog.String("event", ev.Event),
				slog.String("role", ev.RoleName),
				slog.Any("error", err),
			)
		}
		return tracker.End(err)
	}
	return tracker.End(nil)
}
