package scheduler

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New(zerolog.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Stop() })
	return s
}

func TestRegisterTask(t *testing.T) {
	s := newTestScheduler(t)

	cfg := TaskConfig{
		ID:   "test-task",
		Name: "Test Task",
		Cron: "*/5 * * * *",
		Func: func(ctx context.Context) error { return nil },
	}
	if err := s.RegisterTask(cfg); err != nil {
		t.Fatalf("RegisterTask failed: %v", err)
	}

	if err := s.RegisterTask(cfg); err == nil {
		t.Error("Duplicate task ID accepted")
	}

	tasks := s.ListTasks()
	if len(tasks) != 1 {
		t.Fatalf("ListTasks returned %d tasks, want 1", len(tasks))
	}
	if tasks[0].ID != "test-task" || tasks[0].Cron != "*/5 * * * *" {
		t.Errorf("TaskInfo = %+v", tasks[0])
	}
	if tasks[0].Running {
		t.Error("Task reported running before start")
	}
}

func TestRegisterTaskInvalidCron(t *testing.T) {
	s := newTestScheduler(t)

	err := s.RegisterTask(TaskConfig{
		ID:   "bad-cron",
		Name: "Bad Cron",
		Cron: "not a cron expression",
		Func: func(ctx context.Context) error { return nil },
	})
	if err == nil {
		t.Fatal("RegisterTask accepted an invalid cron expression")
	}
}

func TestExecuteTaskRecordsLastRun(t *testing.T) {
	s := newTestScheduler(t)

	ran := false
	err := s.RegisterTask(TaskConfig{
		ID:   "expiry",
		Name: "Expiry",
		Cron: "* * * * *",
		Func: func(ctx context.Context) error {
			ran = true
			return nil
		},
	})
	if err != nil {
		t.Fatalf("RegisterTask failed: %v", err)
	}

	s.executeTask("expiry")

	if !ran {
		t.Error("Task function did not run")
	}
	tasks := s.ListTasks()
	if tasks[0].LastRun == nil {
		t.Error("LastRun not recorded after execution")
	}
}
