package memstore

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/castpipe/batchrun-go/batchrun"
)

// Store 是一个线程安全的内存实现，仅用于开发/轻量场景。
type Store struct {
	mu sync.RWMutex
	m  map[string]*batchrun.Job
}

// New 创建内存存储。
func New() *Store { return &Store{m: map[string]*batchrun.Job{}} }

func (s *Store) Create(ctx context.Context, scope, jobType string, itemIDs []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.m[id] = &batchrun.Job{ID: id, Scope: scope, Type: jobType, ItemIDs: append([]string(nil), itemIDs...)}
	return id, nil
}

// Checkpoint 幂等并集：重复条目不追加；条目不在任务列表内时拒绝，
// 保持 CompletedItemIDs ⊆ ItemIDs 不变式。
func (s *Store) Checkpoint(ctx context.Context, jobID, completedItemID string, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.m[jobID]
	if !ok {
		return errors.New("job not found")
	}
	if !contains(j.ItemIDs, completedItemID) {
		return errors.New("unknown item id")
	}
	if !contains(j.CompletedItemIDs, completedItemID) {
		j.CompletedItemIDs = append(j.CompletedItemIDs, completedItemID)
	}
	j.Progress = progress
	return nil
}

func (s *Store) Retire(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[jobID]; !ok {
		return errors.New("job not found")
	}
	delete(s.m, jobID)
	return nil
}

func (s *Store) ListOpen(ctx context.Context, scope string) ([]batchrun.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]batchrun.Job, 0)
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

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
