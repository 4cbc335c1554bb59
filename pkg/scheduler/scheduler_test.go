package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/dataroom/pkg/scheduler"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatal("condition not met before deadline")
}

// TestAddCronDuplicate 测试同名任务重复注册.
func TestAddCronDuplicate(t *testing.T) {
	s, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer func() { _ = s.Shutdown() }()

	noop := func(context.Context) error { return nil }

	if err := s.AddCron(context.Background(), "noop", "0 * * * *", noop); err != nil {
		t.Fatalf("add cron: %v", err)
	}

	if err := s.AddCron(context.Background(), "noop", "0 * * * *", noop); err == nil {
		t.Fatal("expected duplicate error")
	}

	infos := s.GetJobInfos()
	if len(infos) != 1 || infos[0].Name != "noop" || infos[0].Status != scheduler.StatusScheduled {
		t.Fatalf("unexpected job infos: %+v", infos)
	}

	if err := s.RemoveJobByName("noop"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if len(s.GetJobInfos()) != 0 {
		t.Fatal("job should be removed")
	}
}

// TestRunNowRecordsStatus 测试立即执行后记录成功与失败状态.
func TestRunNowRecordsStatus(t *testing.T) {
	s, err := scheduler.NewScheduler()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer func() { _ = s.Shutdown() }()

	ctx := context.Background()

	if err := s.AddCron(ctx, "ok", "0 0 1 1 *", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("add ok: %v", err)
	}

	if err := s.AddCron(ctx, "fail", "0 0 1 1 *", func(context.Context) error { return errors.New("boom") }); err != nil {
		t.Fatalf("add fail: %v", err)
	}

	s.Start()

	if err := s.RunNow("ok"); err != nil {
		t.Fatalf("run ok: %v", err)
	}

	if err := s.RunNow("fail"); err != nil {
		t.Fatalf("run fail: %v", err)
	}

	waitFor(t, func() bool {
		info, _ := s.GetJobInfoByName("ok")
		return info.Runs == 1 && !info.LastSuccess.IsZero()
	})

	waitFor(t, func() bool {
		info, _ := s.GetJobInfoByName("fail")
		return info.Status == scheduler.StatusError && info.Error == "boom"
	})

	if err := s.RunNow("missing"); err == nil {
		t.Error("expected error for unknown job")
	}
}
