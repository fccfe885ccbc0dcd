package metrics

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/castpipe/batchrun-go/client"
)

// 会话健康度扣分权重。批量生成以网络出口为主，本机负载只作参考，
// 进程内存占比权重最高：编辑会话常驻数小时，内存涨上去就下不来。
const (
	cpuLoadWeight = 5
	diskWeight    = 20
	procMemWeight = 30
	bytesPerGB    = 1024 * 1024 * 1024
)

// CollectSystemMetric 采集编辑会话所在机器的系统/进程指标，用于心跳上报。
// 功能：负载、磁盘、进程内存与协程数各自独立采集，任一失败留零值，
// 不中断其余采集；最后汇总一个 0-100 的会话健康度评分。
func CollectSystemMetric(ctx context.Context) client.SystemMetric {
	var out client.SystemMetric
	if avg, err := load.AvgWithContext(ctx); err == nil {
		out.CPULoad = avg.Load1
	}
	out.CPUProcessors = runtime.NumCPU()
	out.Goroutines = runtime.NumGoroutine()
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil && du.Total > 0 {
		out.DiskTotalGB = float64(du.Total) / bytesPerGB
		out.DiskUsedGB = float64(du.Used) / bytesPerGB
		out.DiskUsageRatio = du.UsedPercent / 100.0
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm.Total > 0 {
		out.ProcMaxMemory = float64(vm.Total) / bytesPerGB
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if pm, err := p.MemoryInfoWithContext(ctx); err == nil && pm != nil {
			usedGB := float64(pm.RSS) / bytesPerGB
			out.ProcUsedMemory = usedGB
			if out.ProcMaxMemory > 0 {
				out.ProcMemUsage = usedGB / out.ProcMaxMemory
			}
		}
	}
	out.Score = healthScore(out)
	return out
}

// healthScore 按权重扣减得出会话健康度，夹在 [0, 100]。
func healthScore(m client.SystemMetric) float64 {
	score := 100.0
	if m.CPULoad > 0 {
		score -= m.CPULoad * cpuLoadWeight
	}
	if m.DiskUsageRatio > 0 {
		score -= m.DiskUsageRatio * diskWeight
	}
	if m.ProcMemUsage > 0 {
		score -= m.ProcMemUsage * procMemWeight
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
