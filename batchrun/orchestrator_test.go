package batchrun

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/castpipe/batchrun-go/executor"
	"github.com/castpipe/batchrun-go/registry"
)

func TestOrchestrator_AtMostOnePerKey(t *testing.T) {
	Convey("concurrent starts for the same (type, scope) share one job", t, func() {
		store := newTraceStore()
		log := &execLog{}
		executor.Register(executor.Definition{
			Type:  "dup-batch",
			Label: "dup-batch",
			Run: executor.ExecFunc(func(ctx context.Context, item executor.Item, state executor.StateFn) (executor.Result, error) {
				log.add(item.ID)
				time.Sleep(50 * time.Millisecond)
				return executor.Result{}, nil
			}),
		})
		o := New(WithScope("p1"), WithStore(store))

		var wg sync.WaitGroup
		ids := make([]string, 4)
		errs := make([]error, 4)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				ids[n], errs[n] = o.StartBatchTask(context.Background(), "dup-batch", "p1", items("a", "b"))
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			So(err, ShouldBeNil)
		}
		So(ids[1], ShouldEqual, ids[0])
		So(ids[2], ShouldEqual, ids[0])
		So(ids[3], ShouldEqual, ids[0])
		So(o.IsRunning("dup-batch", "p1"), ShouldBeTrue)

		st, ok := waitEnd(o, ids[0])
		So(ok, ShouldBeTrue)
		So(st, ShouldEqual, registry.StatusCompleted)
		// 只有一个 Runner 跑过：每个条目恰好执行一次
		So(log.list(), ShouldResemble, []string{"a", "b"})
	})

	Convey("a slow store create never opens a duplicate-runner window", t, func() {
		store := newTraceStore()
		store.createDelay = 100 * time.Millisecond
		log := &execLog{}
		registerOK("slow-create-batch", log)
		o := New(WithScope("p1"), WithStore(store))

		var wg sync.WaitGroup
		ids := make([]string, 2)
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				ids[n], errs[n] = o.StartBatchTask(context.Background(), "slow-create-batch", "p1", items("a", "b"))
			}(i)
		}
		wg.Wait()
		So(errs[0], ShouldBeNil)
		So(errs[1], ShouldBeNil)
		So(ids[1], ShouldEqual, ids[0])

		st, ok := waitEnd(o, ids[0])
		So(ok, ShouldBeTrue)
		So(st, ShouldEqual, registry.StatusCompleted)
		// 建记录期间的并发触发不会各建一条记录：每个条目恰好执行一次
		So(log.list(), ShouldResemble, []string{"a", "b"})
		creates := 0
		for _, op := range store.opList() {
			if op == "create" {
				creates++
			}
		}
		So(creates, ShouldEqual, 1)
		// 无孤儿记录残留，下次恢复无可重跑任务
		open, err := store.ListOpen(context.Background(), "p1")
		So(err, ShouldBeNil)
		So(open, ShouldBeEmpty)
	})

	Convey("different scopes run independently", t, func() {
		store := newTraceStore()
		log := &execLog{}
		registerOK("scoped-batch", log)
		o := New(WithStore(store))

		id1, err := o.StartBatchTask(context.Background(), "scoped-batch", "p1", items("a"))
		So(err, ShouldBeNil)
		id2, err := o.StartBatchTask(context.Background(), "scoped-batch", "p2", items("b"))
		So(err, ShouldBeNil)
		So(id2, ShouldNotEqual, id1)
	})
}

func TestOrchestrator_TriggerValidation(t *testing.T) {
	Convey("empty item list is rejected before any persistence", t, func() {
		store := newTraceStore()
		registerOK("empty-batch", &execLog{})
		o := New(WithScope("p1"), WithStore(store))
		_, err := o.StartBatchTask(context.Background(), "empty-batch", "p1", nil)
		So(errors.Is(err, ErrNoItems), ShouldBeTrue)
		So(store.opList(), ShouldBeEmpty)
	})

	Convey("unregistered job type is rejected", t, func() {
		o := New(WithScope("p1"), WithStore(newTraceStore()))
		_, err := o.StartBatchTask(context.Background(), "no-such-batch", "p1", items("a"))
		So(errors.Is(err, executor.ErrNotFound), ShouldBeTrue)
	})
}

func TestOrchestrator_PhaseChaining(t *testing.T) {
	Convey("phase 2 starts only after phase 1 completes successfully", t, func() {
		store := newTraceStore()
		phase1 := &execLog{}
		phase2 := &execLog{}
		registerOK("phase1-batch", phase1)
		registerOK("phase2-batch", phase2)
		o := New(WithScope("p1"), WithStore(store))

		sel := items("x", "y")
		id1, err := o.StartBatchTask(context.Background(), "phase1-batch", "p1", sel)
		So(err, ShouldBeNil)
		done2 := make(chan string, 1)
		So(o.OnTaskSucceeded(id1, func() {
			id2, err := o.StartBatchTask(context.Background(), "phase2-batch", "p1", sel)
			if err == nil {
				done2 <- id2
			}
		}), ShouldBeTrue)

		var id2 string
		select {
		case id2 = <-done2:
		case <-time.After(2 * time.Second):
			t.Fatal("phase 2 never started")
		}
		st, ok := waitEnd(o, id2)
		So(ok, ShouldBeTrue)
		So(st, ShouldEqual, registry.StatusCompleted)
		So(phase1.list(), ShouldResemble, []string{"x", "y"})
		So(phase2.list(), ShouldResemble, []string{"x", "y"})
	})

	Convey("a failed phase 1 never triggers phase 2", t, func() {
		store := newTraceStore()
		phase2 := &execLog{}
		executor.Register(executor.Definition{
			Type:  "phase1-bad-batch",
			Label: "phase1-bad-batch",
			Run: executor.ExecFunc(func(ctx context.Context, item executor.Item, state executor.StateFn) (executor.Result, error) {
				return executor.Result{}, errors.New("quota exceeded")
			}),
		})
		registerOK("phase2-skipped-batch", phase2)
		o := New(WithScope("p1"), WithStore(store))

		id1, err := o.StartBatchTask(context.Background(), "phase1-bad-batch", "p1", items("x", "y"))
		So(err, ShouldBeNil)
		So(o.OnTaskSucceeded(id1, func() {
			_, _ = o.StartBatchTask(context.Background(), "phase2-skipped-batch", "p1", items("x", "y"))
		}), ShouldBeTrue)

		st, ok := waitEnd(o, id1)
		So(ok, ShouldBeTrue)
		So(st, ShouldEqual, registry.StatusFailed)
		time.Sleep(50 * time.Millisecond)
		So(phase2.list(), ShouldBeEmpty)
	})
}

func TestOrchestrator_SingleTasks(t *testing.T) {
	Convey("single tasks share the registry visibility without persistence", t, func() {
		store := newTraceStore()
		reg := registry.NewManager()
		o := New(WithScope("p1"), WithStore(store), WithRegistry(reg))

		id, created := o.RegisterSingleTask("portrait-single", "p1", "生成单张立绘")
		So(created, ShouldBeTrue)
		So(o.IsRunning("portrait-single", "p1"), ShouldBeTrue)
		views := reg.Snapshot()
		So(len(views), ShouldEqual, 1)
		So(views[0].Label, ShouldEqual, "生成单张立绘")
		So(views[0].Total, ShouldEqual, 1)

		// 同键重复注册复用已有句柄
		id2, created2 := o.RegisterSingleTask("portrait-single", "p1", "x")
		So(created2, ShouldBeFalse)
		So(id2, ShouldEqual, id)

		o.CompleteSingleTask(id)
		So(o.IsRunning("portrait-single", "p1"), ShouldBeFalse)
		// 无任何持久化痕迹
		So(store.opList(), ShouldBeEmpty)

		st, ok := waitEnd(o, id)
		So(ok, ShouldBeTrue)
		So(st, ShouldEqual, registry.StatusCompleted)
	})

	Convey("a failed single task surfaces the failed status", t, func() {
		o := New(WithScope("p1"), WithStore(newTraceStore()))
		id, created := o.RegisterSingleTask("fill-single", "p1", "补全单个设定")
		So(created, ShouldBeTrue)
		o.FailSingleTask(id)
		st, ok := waitEnd(o, id)
		So(ok, ShouldBeTrue)
		So(st, ShouldEqual, registry.StatusFailed)
	})
}

func TestEstimateDuration(t *testing.T) {
	Convey("estimate scales the registered per-item duration", t, func() {
		executor.Register(executor.Definition{Type: "est-batch", Label: "est-batch", Run: executor.ExecFunc(func(ctx context.Context, item executor.Item, state executor.StateFn) (executor.Result, error) {
			return executor.Result{}, nil
		}), Estimate: 2 * time.Second})
		So(EstimateDuration("est-batch", 5), ShouldEqual, 10*time.Second)
		So(EstimateDuration("no-such-batch", 5), ShouldEqual, 0)
	})
}
