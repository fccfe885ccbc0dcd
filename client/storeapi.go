package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// JobStoreAPI 定义与 Job Store 服务交互的接口，便于 gomock 打桩。
// 功能：封装任务的 create/checkpoint/retire/listOpen 与进度、心跳上报。
type JobStoreAPI interface {
	CreateJob(ctx context.Context, base string, req CreateJobReq) (jobID string, err error)
	Checkpoint(ctx context.Context, base string, req CheckpointReq) error
	RetireJob(ctx context.Context, base string, jobID string) error
	ListOpenJobs(ctx context.Context, base string, scope string) ([]OpenJob, error)
	ReportProgress(ctx context.Context, base string, req ProgressReportReq) error
	Heartbeat(ctx context.Context, base string, hb WorkerHeartbeat) error
}

// httpJobStoreAPI 实现 JobStoreAPI。
type httpJobStoreAPI struct{ hc *http.Client }

// NewHTTPJobStoreAPI 构造 HTTP 实现。
func NewHTTPJobStoreAPI() JobStoreAPI {
	return &httpJobStoreAPI{hc: &http.Client{Timeout: 8 * time.Second}}
}

// CreateJob 发起 /job/create 创建任务记录。
// 参数：base 形如 127.0.0.1:7700；req 携带 scope/type/itemIds。
// 返回：服务端分配的 jobId，或错误。
func (h *httpJobStoreAPI) CreateJob(ctx context.Context, base string, req CreateJobReq) (string, error) {
	u := fmt.Sprintf("http://%s/job/create", base)
	var resp CreateJobResp
	if err := h.post(ctx, u, req, &resp); err != nil {
		return "", err
	}
	if resp.Job.ID == "" {
		return "", fmt.Errorf("create job: empty job id in response")
	}
	return resp.Job.ID, nil
}

// Checkpoint 提交一条检查点。服务端保证并集语义，重试安全。
func (h *httpJobStoreAPI) Checkpoint(ctx context.Context, base string, req CheckpointReq) error {
	u := fmt.Sprintf("http://%s/job/checkpoint", base)
	return h.post(ctx, u, req, nil)
}

// RetireJob 清退（删除）任务记录。
func (h *httpJobStoreAPI) RetireJob(ctx context.Context, base string, jobID string) error {
	u := fmt.Sprintf("http://%s/job/retire", base)
	return h.post(ctx, u, map[string]string{"jobId": jobID}, nil)
}

// ListOpenJobs 拉取指定作用域的未完结任务。
func (h *httpJobStoreAPI) ListOpenJobs(ctx context.Context, base string, scope string) ([]OpenJob, error) {
	u := fmt.Sprintf("http://%s/job/listOpen?scope=%s", base, url.QueryEscape(scope))
	var resp OpenJobsResp
	if err := h.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// ReportProgress 上报运行中任务进度。
func (h *httpJobStoreAPI) ReportProgress(ctx context.Context, base string, req ProgressReportReq) error {
	u := fmt.Sprintf("http://%s/job/reportProgress", base)
	return h.post(ctx, u, req, nil)
}

// Heartbeat 上报会话心跳。
func (h *httpJobStoreAPI) Heartbeat(ctx context.Context, base string, hb WorkerHeartbeat) error {
	u := fmt.Sprintf("http://%s/job/workerHeartbeat", base)
	return h.post(ctx, u, hb, nil)
}

// get 执行 GET 请求并解码 JSON。
func (h *httpJobStoreAPI) get(ctx context.Context, url string, out any) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	res, err := h.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		b, _ := io.ReadAll(res.Body)
		return fmt.Errorf("GET %s => %d: %s", url, res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// post 执行 POST 请求并可选解码响应。
func (h *httpJobStoreAPI) post(ctx context.Context, u string, body any, out any) error {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	res, err := h.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		rb, _ := io.ReadAll(res.Body)
		return fmt.Errorf("POST %s => %d: %s", u, res.StatusCode, string(rb))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
