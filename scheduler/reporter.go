package scheduler

import (
	"context"
	"time"

	"github.com/castpipe/batchrun-go/client"
	"github.com/castpipe/batchrun-go/logging"
)

// Running 最小化的运行中任务视图。
type Running struct {
	JobID    string
	Type     string
	Scope    string
	Done     int
	Total    int
	Progress int
}

// runningLister 仅需要列出运行中任务的精简信息，避免与任务目录强耦合。
type runningLister interface {
	ListRunning(ctx context.Context) ([]Running, error)
}

// ProgressReporter 周期性上报运行中任务进度。
type ProgressReporter struct {
	api      client.JobStoreAPI
	base     string
	repo     runningLister
	source   string
	interval time.Duration
}

// NewReporter 构造。
func NewReporter(api client.JobStoreAPI, base string, repo runningLister, source string, seconds int) *ProgressReporter {
	return &ProgressReporter{api: api, base: base, repo: repo, source: source, interval: time.Duration(seconds) * time.Second}
}

// Start 启动上报任务。上报失败只记日志，不影响任务执行。
func (r *ProgressReporter) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				list, err := r.repo.ListRunning(ctx)
				if err != nil {
					logging.L().Warn(ctx, "list running failed", "err", err)
					continue
				}
				for _, it := range list {
					req := client.ProgressReportReq{
						JobID:      it.JobID,
						Type:       it.Type,
						Scope:      it.Scope,
						Done:       it.Done,
						Total:      it.Total,
						Progress:   it.Progress,
						ReportTime: time.Now().UnixMilli(),
						Source:     r.source,
					}
					if err := r.api.ReportProgress(ctx, r.base, req); err != nil {
						logging.L().Warn(ctx, "report progress failed", "job", it.JobID, "err", err)
					}
				}
			}
		}
	}()
}
