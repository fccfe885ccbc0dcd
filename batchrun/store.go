package batchrun

import (
	"context"
	"math"
)

// Job 任务持久化记录。
// 不持久化失败态：失败只是内存中的临时状况，失败的任务在存储里
// 保持未完结，停在最后一次成功写入的检查点上。
type Job struct {
	ID               string
	Scope            string
	Type             string
	ItemIDs          []string // 有序且在任务生命周期内不变
	CompletedItemIDs []string // 单调增长，恒为 ItemIDs 的子集
	Progress         int      // 0-100，仅作提示，读取方始终按计数重算
}

// Remaining 计算未处理条目：ItemIDs − CompletedItemIDs，保持原始顺序。
func (j Job) Remaining() []string {
	done := make(map[string]struct{}, len(j.CompletedItemIDs))
	for _, id := range j.CompletedItemIDs {
		done[id] = struct{}{}
	}
	out := make([]string, 0, len(j.ItemIDs)-len(done))
	for _, id := range j.ItemIDs {
		if _, ok := done[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Store 任务记录的持久化边界（可由远端 Job Store、内存或数据库实现）。
type Store interface {
	// Create 创建任务记录，返回任务ID。
	Create(ctx context.Context, scope, jobType string, itemIDs []string) (string, error)
	// Checkpoint 追加一条完成条目并刷新进度提示。
	// 必须是幂等并集而非裸追加：网络重试不得导致集合重复或损坏。
	Checkpoint(ctx context.Context, jobID, completedItemID string, progress int) error
	// Retire 清退（删除）已完结的任务记录。
	Retire(ctx context.Context, jobID string) error
	// ListOpen 列出指定作用域的全部未完结任务。
	ListOpen(ctx context.Context, scope string) ([]Job, error)
}

// Progress 按完成计数换算百分比。
func Progress(done, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
