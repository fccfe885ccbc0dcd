package client

import "encoding/json"

// 以下类型对应 Job Store 服务的 HTTP 契约，字段命名与服务端文档一致。

// CreateJobReq 创建任务请求体。
type CreateJobReq struct {
	Scope   string   `json:"scope"`
	Type    string   `json:"type"`
	ItemIDs []string `json:"itemIds"`
}

// CreateJobResp 创建任务响应：{ "job": { "id": "..." } }。
type CreateJobResp struct {
	Job struct {
		ID string `json:"id"`
	} `json:"job"`
}

// CheckpointReq 单条目完成检查点。
// 服务端按集合并集处理 CompletedItemID，重复提交同一条目不产生副作用。
type CheckpointReq struct {
	JobID           string `json:"jobId"`
	CompletedItemID string `json:"completedItemId"`
	Progress        int    `json:"progress"`
}

// OpenJob 未完结任务的线上形态。
// Input/Output 是序列化后的结构化文本，内容可能来自旧版本或已损坏，
// 必须经 ParseItemIDs/ParseCompletedIDs 防御式解析。
type OpenJob struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

// OpenJobsResp listOpen 响应：{ "jobs": [...] }。
type OpenJobsResp struct {
	Jobs []OpenJob `json:"jobs"`
}

// ProgressReportReq 运行中任务进度上报。
type ProgressReportReq struct {
	JobID      string `json:"jobId"`
	Type       string `json:"type"`
	Scope      string `json:"scope"`
	Done       int    `json:"done"`
	Total      int    `json:"total"`
	Progress   int    `json:"progress"`
	ReportTime int64  `json:"reportTime"`
	Source     string `json:"source"`
}

// WorkerHeartbeat 会话心跳包。
type WorkerHeartbeat struct {
	AppName       string       `json:"appName"`
	HeartbeatTime int64        `json:"heartbeatTime"`
	SystemMetrics SystemMetric `json:"systemMetrics"`
}

// SystemMetric 系统指标。
type SystemMetric struct {
	CPULoad        float64 `json:"cpuLoad"`
	CPUProcessors  int     `json:"cpuProcessors"`
	DiskTotalGB    float64 `json:"diskTotal"`
	DiskUsageRatio float64 `json:"diskUsage"`
	DiskUsedGB     float64 `json:"diskUsed"`
	ProcMaxMemory  float64 `json:"procMaxMemory"`
	ProcMemUsage   float64 `json:"procMemoryUsage"`
	ProcUsedMemory float64 `json:"procUsedMemory"`
	Goroutines     int     `json:"goroutines"`
	Score          float64 `json:"score"`
}

// inputPayload 即 Input 文本的真实结构。
type inputPayload struct {
	ItemIDs []string `json:"itemIds"`
}

// outputPayload 即 Output 文本的真实结构。
type outputPayload struct {
	CompletedItemIDs []string `json:"completedItemIds"`
}

// ParseItemIDs 解析 input 负载。
// 内容缺失或损坏时返回空列表而非报错：损坏的任务等同于零条目任务，
// 由恢复流程直接清退。
func ParseItemIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var p inputPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	return p.ItemIDs
}

// ParseCompletedIDs 解析 output 负载，语义同 ParseItemIDs。
func ParseCompletedIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	var p outputPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	return p.CompletedItemIDs
}

// EncodeItemIDs 生成 input 负载文本（供本地存储实现复用同一线上格式）。
func EncodeItemIDs(ids []string) string {
	b, _ := json.Marshal(inputPayload{ItemIDs: ids})
	return string(b)
}

// EncodeCompletedIDs 生成 output 负载文本。
func EncodeCompletedIDs(ids []string) string {
	b, _ := json.Marshal(outputPayload{CompletedItemIDs: ids})
	return string(b)
}
