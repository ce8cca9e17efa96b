package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/yashng7/zero-grid/jobs"
)

type stubEnqueuer struct {
	tasks []*asynq.Task
}

func (s *stubEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{ID: "1", Type: task.Type(), Queue: jobs.QueueDefault}, nil
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

func TestTriggerMaintenanceTasks(t *testing.T) {
	client := &stubEnqueuer{}
	c := NewJobsCLI(client, nil)

	for _, name := range []string{jobs.TaskPurgeResetTokens, jobs.TaskPurgeRateLimits} {
		info, err := c.Trigger(context.Background(), name)
		if err != nil {
			t.Fatalf("trigger %s: %v", name, err)
		}
		if info.Type != name {
			t.Fatalf("expected %s, got %s", name, info.Type)
		}
	}
	if len(client.tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(client.tasks))
	}
}

func TestTriggerRejectsUnknownJob(t *testing.T) {
	c := NewJobsCLI(&stubEnqueuer{}, nil)
	if _, err := c.Trigger(context.Background(), jobs.TaskTypeSendEmail); err == nil {
		t.Fatal("expected error for unsupported job")
	}
	var nilCLI *JobsCLI
	if _, err := nilCLI.Trigger(context.Background(), jobs.TaskPurgeRateLimits); err == nil {
		t.Fatal("expected error for unconfigured cli")
	}
}

func TestInspectQueue(t *testing.T) {
	c := NewJobsCLI(nil, stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 4, Retry: 1}})
	stats, err := c.InspectQueue()
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if stats.Pending != 4 || stats.Retry != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	c = NewJobsCLI(nil, stubInspector{err: errors.New("redis down")})
	if _, err := c.InspectQueue(); err == nil {
		t.Fatal("expected inspector error")
	}
}
