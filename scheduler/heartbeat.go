package scheduler

import (
	"context"
	"time"

	"github.com/castpipe/batchrun-go/client"
	"github.com/castpipe/batchrun-go/logging"
	"github.com/castpipe/batchrun-go/metrics"
)

// HeartbeatScheduler 周期性上报会话心跳与系统指标。
type HeartbeatScheduler struct {
	api      client.JobStoreAPI
	base     string
	appName  string
	interval time.Duration
}

// NewHeartbeat 构造。
func NewHeartbeat(api client.JobStoreAPI, base, appName string, seconds int) *HeartbeatScheduler {
	return &HeartbeatScheduler{api: api, base: base, appName: appName, interval: time.Duration(seconds) * time.Second}
}

// Start 启动心跳。
func (h *HeartbeatScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				hb := client.WorkerHeartbeat{
					AppName:       h.appName,
					HeartbeatTime: time.Now().UnixMilli(),
					SystemMetrics: metrics.CollectSystemMetric(ctx),
				}
				if err := h.api.Heartbeat(ctx, h.base, hb); err != nil {
					logging.L().Warn(ctx, "heartbeat failed", "err", err)
				}
			}
		}
	}()
}
