package batchrun

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// inMemoryStore 是包内置的线程安全内存存储，仅用于默认与测试场景。
// 设计：为了避免 import cycle，不依赖 storage 子包，实现最小的 Store 接口。
type inMemoryStore struct {
	mu sync.RWMutex
	m  map[string]*Job
}

// newDefaultMemStore 创建内置内存存储实现。
func newDefaultMemStore() Store { return &inMemoryStore{m: map[string]*Job{}} }

func (s *inMemoryStore) Create(ctx context.Context, scope, jobType string, itemIDs []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.m[id] = &Job{ID: id, Scope: scope, Type: jobType, ItemIDs: append([]string(nil), itemIDs...)}
	return id, nil
}

// Checkpoint 幂等并集：重复提交同一条目不改变集合；
// 不在 ItemIDs 内的条目视为非法，保持子集不变式。
func (s *inMemoryStore) Checkpoint(ctx context.Context, jobID, completedItemID string, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.m[jobID]
	if !ok {
		return errors.New("job not found")
	}
	member := false
	for _, id := range j.ItemIDs {
		if id == completedItemID {
			member = true
			break
		}
	}
	if !member {
		return errors.New("unknown item id")
	}
	for _, id := range j.CompletedItemIDs {
		if id == completedItemID {
			j.Progress = progress
			return nil
		}
	}
	j.CompletedItemIDs = append(j.CompletedItemIDs, completedItemID)
	j.Progress = progress
	return nil
}

func (s *inMemoryStore) Retire(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[jobID]; !ok {
		return errors.New("job not found")
	}
	delete(s.m, jobID)
	return nil
}

func (s *inMemoryStore) ListOpen(ctx context.Context, scope string) ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0)
	for _, j := range s.m {
		if j.Scope == scope {
			cp := *j
			cp.ItemIDs = append([]string(nil), j.ItemIDs...)
			cp.CompletedItemIDs = append([]string(nil), j.CompletedItemIDs...)
			out = append(out, cp)
		}
	}
	return out, nil
}
