package batchrun

import (
	"context"

	"github.com/castpipe/batchrun-go/client"
)

// remoteStore 将远端 Job Store 的 HTTP 接口适配为 Store。
// input/output 负载均经 client 的防御式解析，损坏内容落为空集合。
type remoteStore struct {
	api  client.JobStoreAPI
	base string
}

// NewRemoteStore 基于 JobStoreAPI 构造远端存储。
func NewRemoteStore(api client.JobStoreAPI, base string) Store {
	return &remoteStore{api: api, base: base}
}

func (r *remoteStore) Create(ctx context.Context, scope, jobType string, itemIDs []string) (string, error) {
	return r.api.CreateJob(ctx, r.base, client.CreateJobReq{Scope: scope, Type: jobType, ItemIDs: itemIDs})
}

func (r *remoteStore) Checkpoint(ctx context.Context, jobID, completedItemID string, progress int) error {
	return r.api.Checkpoint(ctx, r.base, client.CheckpointReq{JobID: jobID, CompletedItemID: completedItemID, Progress: progress})
}

func (r *remoteStore) Retire(ctx context.Context, jobID string) error {
	return r.api.RetireJob(ctx, r.base, jobID)
}

func (r *remoteStore) ListOpen(ctx context.Context, scope string) ([]Job, error) {
	list, err := r.api.ListOpenJobs(ctx, r.base, scope)
	if err != nil {
		return nil, err
	}
	out := make([]Job, 0, len(list))
	for _, oj := range list {
		out = append(out, Job{
			ID:               oj.ID,
			Scope:            scope,
			Type:             oj.Type,
			ItemIDs:          client.ParseItemIDs(oj.Input),
			CompletedItemIDs: client.ParseCompletedIDs(oj.Output),
		})
	}
	return out, nil
}
