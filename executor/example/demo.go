package example

import (
	"context"
	"time"

	"github.com/castpipe/batchrun-go/executor"
)

// demoRun 一个示例执行器：等待 120ms 模拟一次外部 AI 调用并返回条目ID。
func demoRun(ctx context.Context, item executor.Item, state executor.StateFn) (executor.Result, error) {
	select {
	case <-ctx.Done():
		return executor.Result{}, ctx.Err()
	case <-time.After(120 * time.Millisecond):
		return executor.Result{Payload: item.ID}, nil
	}
}

func init() {
	executor.Register(executor.Definition{
		Type:     "demo-batch",
		Label:    "演示批量任务",
		Run:      executor.ExecFunc(demoRun),
		Estimate: 120 * time.Millisecond,
	})
}
