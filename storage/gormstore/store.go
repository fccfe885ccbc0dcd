package gormstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/castpipe/batchrun-go/batchrun"
	"github.com/castpipe/batchrun-go/client"
)

// model 映射到数据库表。
// Input/Output 与线上接口一致，存序列化的结构化文本；
// 读取时防御式解析，损坏内容落为空集合。
type model struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Scope     string    `gorm:"index"`
	Type      string    `gorm:"index"`
	Input     string    `gorm:"type:text"`
	Output    string    `gorm:"type:text"`
	Progress  int       `gorm:"default:0"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Store 基于 GORM 的 batchrun.Store 实现。
type Store struct{ db *gorm.DB }

// New 创建 Store，调用方应自行在外部执行 AutoMigrate(Model()).
func New(db *gorm.DB) *Store { return &Store{db: db} }

// Model 暴露表结构，供调用方 AutoMigrate。
func Model() any { return &model{} }

// Create 实现 Store.Create。
func (s *Store) Create(ctx context.Context, scope, jobType string, itemIDs []string) (string, error) {
	m := model{
		ID:        uuid.NewString(),
		Scope:     scope,
		Type:      jobType,
		Input:     client.EncodeItemIDs(itemIDs),
		Output:    client.EncodeCompletedIDs(nil),
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return "", err
	}
	return m.ID, nil
}

// Checkpoint 实现 Store.Checkpoint（幂等并集，保持子集不变式）。
func (s *Store) Checkpoint(ctx context.Context, jobID, completedItemID string, progress int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model
		if err := tx.Where("id = ?", jobID).First(&m).Error; err != nil {
			return err
		}
		items := client.ParseItemIDs(m.Input)
		done := client.ParseCompletedIDs(m.Output)
		if !contains(items, completedItemID) {
			return gorm.ErrInvalidData
		}
		if !contains(done, completedItemID) {
			done = append(done, completedItemID)
		}
		return tx.Model(&model{}).Where("id = ?", jobID).
			Updates(map[string]any{"output": client.EncodeCompletedIDs(done), "progress": progress}).Error
	})
}

// Retire 实现 Store.Retire。
func (s *Store) Retire(ctx context.Context, jobID string) error {
	return s.db.WithContext(ctx).Where("id = ?", jobID).Delete(&model{}).Error
}

// ListOpen 实现 Store.ListOpen。
func (s *Store) ListOpen(ctx context.Context, scope string) ([]batchrun.Job, error) {
	var list []model
	if err := s.db.WithContext(ctx).Where("scope = ?", scope).Find(&list).Error; err != nil {
		return nil, err
	}
	out := make([]batchrun.Job, 0, len(list))
	for _, m := range list {
		out = append(out, batchrun.Job{
			ID:               m.ID,
			Scope:            m.Scope,
			Type:             m.Type,
			ItemIDs:          client.ParseItemIDs(m.Input),
			CompletedItemIDs: client.ParseCompletedIDs(m.Output),
			Progress:         m.Progress,
		})
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
