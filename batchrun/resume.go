package batchrun

import (
	"context"

	"github.com/castpipe/batchrun-go/executor"
	"github.com/castpipe/batchrun-go/logging"
)

// Resume 激活期恢复流程：对齐持久化状态与内存状态。
// 契约：每次工作区激活执行一次；对存储里的每个未完结任务：
//   - 类型未注册（旧版本遗留）：直接清退，避免恢复不兼容的工作；
//   - 剩余条目为空（完结后清退调用丢失，或条目负载损坏落为空集）：直接清退；
//   - 该键无运行句柄：以保留的完成集与剩余条目重挂 Runner，
//     进度从上次检查点继续而非归零。
// 同键已在跑的任务不重复挂载。任何存储错误只记日志，不影响宿主。
func (o *Orchestrator) Resume(ctx context.Context) {
	scope := o.opt.Scope
	jobs, err := o.store.ListOpen(ctx, scope)
	if err != nil {
		logging.L().Warn(ctx, "list open jobs failed", "scope", scope, "err", err)
		return
	}
	for _, j := range jobs {
		def, ok := executor.Get(j.Type)
		if !ok {
			logging.L().Warn(ctx, "unknown job type on resume, retiring", "job", j.ID, "type", j.Type)
			o.retireQuiet(ctx, j.ID)
			continue
		}
		remaining := j.Remaining()
		if len(remaining) == 0 {
			o.retireQuiet(ctx, j.ID)
			continue
		}
		if o.reg.IsRunning(j.Type, scope) {
			continue
		}
		items := make([]executor.Item, len(j.ItemIDs))
		for i, id := range j.ItemIDs {
			items[i] = def.DescribeItem(id)
		}
		h, created := o.reg.StartBatch(j.Type, scope, j.ID, def.Label, len(j.ItemIDs), len(j.CompletedItemIDs))
		if !created {
			continue
		}
		logging.L().Info(ctx, "resuming interrupted job", "job", j.ID, "type", j.Type, "remaining", len(remaining))
		r := newRunner(o.store, o.reg, j.ID, Descriptor{
			Type:      j.Type,
			Scope:     scope,
			Items:     items,
			Completed: j.CompletedItemIDs,
			Def:       def,
		})
		go r.run(h.Ctx)
	}
}

func (o *Orchestrator) retireQuiet(ctx context.Context, jobID string) {
	if err := o.store.Retire(ctx, jobID); err != nil {
		logging.L().Warn(ctx, "retire on resume failed", "job", jobID, "err", err)
	}
}
