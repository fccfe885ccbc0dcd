package batchrun

import (
	"context"
	"errors"

	"github.com/castpipe/batchrun-go/executor"
	"github.com/castpipe/batchrun-go/logging"
	"github.com/castpipe/batchrun-go/registry"
)

// Descriptor 一个批量任务的完整描述。
type Descriptor struct {
	Type      string
	Scope     string
	Items     []executor.Item // 全量条目，有序
	Completed []string        // 恢复场景下已完成的条目ID
	Def       executor.Definition
}

// Runner 顺序执行一个任务的未处理条目。
// 同一任务内严格串行：任一时刻至多一个在途执行器调用——每次调用都是
// 计费且限流的外部操作，放开并发会击穿速率与费用约束。
type Runner struct {
	store Store
	reg   *registry.Manager
	jobID string
	desc  Descriptor
}

func newRunner(store Store, reg *registry.Manager, jobID string, desc Descriptor) *Runner {
	return &Runner{store: store, reg: reg, jobID: jobID, desc: desc}
}

// run 在独立协程中驱动整个条目循环。
// 顺序保证：第 N 条的检查点写入完成后，第 N+1 条的执行器调用才会开始。
func (r *Runner) run(ctx context.Context) {
	remaining := remainingItems(r.desc.Items, r.desc.Completed)
	if len(remaining) == 0 {
		// 无事可做：直接清退并完结，不触碰执行器
		r.retire(ctx)
		r.reg.Complete(r.jobID)
		return
	}
	done := len(r.desc.Items) - len(remaining)
	total := len(r.desc.Items)
	for _, it := range remaining {
		// 协作式取消：仅在条目之间观察，在途调用由执行器自行响应信号
		select {
		case <-ctx.Done():
			logging.L().Info(ctx, "job cancelled, resumable at last checkpoint", "job", r.jobID, "done", done, "total", total)
			r.reg.Drop(r.jobID)
			return
		default:
		}
		res, err := r.desc.Def.Run.Execute(ctx, it, r.desc.Def.State)
		if err != nil {
			// 执行器在途响应了取消信号：这是取消而非失败，
			// 走取消路径，任务留在存储中可恢复，不触发终态回调
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				logging.L().Info(ctx, "job cancelled, resumable at last checkpoint", "job", r.jobID, "done", done, "total", total)
				r.reg.Drop(r.jobID)
				return
			}
			// 单条失败立即停止：每条都是计费操作，静默跳过会掩盖开销
			// 并留下参差不齐的实体集合。最后一个成功检查点即持久状态。
			logging.L().Warn(ctx, "item execution failed, aborting job", "job", r.jobID, "item", it.ID, "err", err)
			r.reg.Fail(r.jobID)
			return
		}
		if r.desc.Def.Apply != nil {
			r.desc.Def.Apply(ctx, it, res, r.desc.Def.State)
		}
		done++
		r.reg.Advance(r.jobID)
		if err := r.store.Checkpoint(ctx, r.jobID, it.ID, Progress(done, total)); err != nil {
			// 持久化失败不终止循环：恢复时从最后一次成功检查点重算，
			// 代价是该条目可能被重放（至少一次）
			logging.L().Warn(ctx, "checkpoint failed", "job", r.jobID, "item", it.ID, "err", err)
		}
	}
	r.retire(ctx)
	r.reg.Complete(r.jobID)
}

func (r *Runner) retire(ctx context.Context) {
	if err := r.store.Retire(ctx, r.jobID); err != nil {
		// 留在存储里的全完成任务由下次恢复流程清退
		logging.L().Warn(ctx, "retire failed", "job", r.jobID, "err", err)
	}
}

// remainingItems 计算未处理条目，保持原始顺序。
func remainingItems(items []executor.Item, completed []string) []executor.Item {
	done := make(map[string]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}
	out := make([]executor.Item, 0, len(items))
	for _, it := range items {
		if _, ok := done[it.ID]; !ok {
			out = append(out, it)
		}
	}
	return out
}
