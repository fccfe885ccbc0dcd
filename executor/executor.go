package executor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// 内置任务类型。宿主可自由注册更多类型，字符串会随任务记录持久化，
// 改名等同于废弃旧类型（恢复时按未知类型清退）。
const (
	TypeSpecFill = "spec-fill-batch" // 为每个角色补全设定
	TypePortrait = "portrait-batch"  // 为每个角色生成立绘
	TypeCostume  = "costume-batch"   // 为每个 角色×场景 生成服装
)

// Item 任务中的一个条目：不透明标识 + 展示用名称。
type Item struct {
	ID    string
	Label string
}

// Result 单条目执行结果，Payload 由 Apply 回调按类型解释。
type Result struct {
	Payload any
}

// StateFn 宿主实体集合的最新快照访问器。
// 每次条目执行前由调用方实时读取，而不是任务启动时捕获一次——
// 一个任务跨越大量异步调用，启动时的快照到第 N 条早已过期。
type StateFn func() any

// Executor 单条目执行器：一次计费的外部 AI 调用加上返回结果。
// 要求对中断后重放安全：同一条目可能被执行多于一次（至少一次语义），
// 其副作用须采用追加而非覆盖，见 Apply。
type Executor interface {
	Execute(ctx context.Context, item Item, state StateFn) (Result, error)
}

// ExecFunc 函数式执行器适配。
type ExecFunc func(ctx context.Context, item Item, state StateFn) (Result, error)

func (f ExecFunc) Execute(ctx context.Context, item Item, state StateFn) (Result, error) {
	return f(ctx, item, state)
}

// Definition 一个任务类型的完整注册信息。
// 注册一次随进程常驻；触发与恢复两条路径都经由它解析出执行器与回调，
// 持久化记录里只存类型字符串，不存任何代码引用。
type Definition struct {
	Type     string
	Label    string   // UI 展示名
	Run      Executor // 单条目执行器
	// Apply 单条目完成回调：把结果写回宿主实体（追加语义）。
	Apply func(ctx context.Context, item Item, res Result, state StateFn)
	// State 实时快照访问器，透传给 Run 与 Apply。
	State StateFn
	// Describe 由条目ID还原展示条目；缺省时以 ID 充当 Label（恢复场景）。
	Describe func(id string) Item
	// Estimate 单条目预估耗时，仅用于 UI 提示。
	Estimate time.Duration
}

// DescribeItem 按定义还原条目。
func (d Definition) DescribeItem(id string) Item {
	if d.Describe != nil {
		return d.Describe(id)
	}
	return Item{ID: id, Label: id}
}

var (
	regMu sync.RWMutex
	defs  = map[string]Definition{}
)

// Register 注册任务类型定义，同名覆盖。
func Register(def Definition) {
	regMu.Lock()
	defer regMu.Unlock()
	defs[def.Type] = def
}

// Get 按类型取定义。
func Get(jobType string) (Definition, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	d, ok := defs[jobType]
	return d, ok
}

// ErrNotFound 任务类型未注册错误。
var ErrNotFound = errors.New("job type not registered")

// keySep 复合条目键分隔符（如 角色×场景）。
const keySep = "::"

// JoinKey 组装复合条目键。
func JoinKey(parts ...string) string { return strings.Join(parts, keySep) }

// SplitKey 拆解复合条目键，执行器据此还原各实体引用。
func SplitKey(key string) []string { return strings.Split(key, keySep) }
