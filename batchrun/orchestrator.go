package batchrun

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/castpipe/batchrun-go/client"
	"github.com/castpipe/batchrun-go/executor"
	"github.com/castpipe/batchrun-go/logging"
	"github.com/castpipe/batchrun-go/registry"
	"github.com/castpipe/batchrun-go/scheduler"
)

// Orchestrator 组件主对象：批量任务的统一入口与后台生命周期控制。
// 说明：触发、阶段串联、一次性任务与恢复都经由它；Start(ctx) 执行一次
// 激活期恢复并启动进度/心跳上报任务，ctx.Done 时全部停止。
type Orchestrator struct {
	opt   Options
	store Store
	api   client.JobStoreAPI
	reg   *registry.Manager

	startMu sync.Mutex
	starts  map[registry.Key]*sync.Mutex
}

// ErrNoItems 触发时条目列表为空。
var ErrNoItems = errors.New("empty item list")

// New 创建 Orchestrator。
// 功能：按照 With... 可选项组合出一个可运行的实例；若未显式传入存储实现，
// 优先基于 WithStoreAPI 构造远端存储，否则使用内置内存存储。
// 构造阶段不返回错误，运行期问题通过日志输出并按失败语义降级。
func New(opts ...Option) *Orchestrator {
	cfg := &orchestratorConfig{}
	for _, fn := range opts {
		fn(cfg)
	}
	cfg.opt.withDefaults()
	o := &Orchestrator{opt: cfg.opt, api: cfg.api, reg: cfg.reg, starts: make(map[registry.Key]*sync.Mutex)}
	if o.reg == nil {
		o.reg = registry.NewManager()
	}
	if cfg.store != nil {
		o.store = cfg.store
	} else if cfg.api != nil && cfg.opt.ServerAddr != "" {
		o.store = NewRemoteStore(cfg.api, cfg.opt.ServerAddr)
	} else {
		// 避免 import cycle：默认使用包内置的内存实现
		o.store = newDefaultMemStore()
	}
	return o
}

// Registry 暴露任务目录，供 UI 面板 Snapshot/Subscribe。
func (o *Orchestrator) Registry() *registry.Manager { return o.reg }

// IsRunning 判断 (type, scope) 是否已有任务在跑。
func (o *Orchestrator) IsRunning(jobType, scope string) bool {
	return o.reg.IsRunning(jobType, scope)
}

// StartBatchTask 触发一个批量任务。
// 契约：同键已有任务在跑时返回已有任务ID且不启动第二个 Runner；
// 否则创建任务记录、注册句柄并在后台协程启动顺序执行。
// 参数：items 非空的有序条目列表。
// 返回：任务ID；类型未注册或条目为空时报错。
func (o *Orchestrator) StartBatchTask(ctx context.Context, jobType, scope string, items []executor.Item) (string, error) {
	// 同键触发串行化：查重、建记录、注册句柄必须是一个原子段，
	// 否则建记录期间的并发触发会各建一条记录并把整批计费条目跑两遍
	mu := o.startLock(registry.Key{Type: jobType, Scope: scope})
	mu.Lock()
	defer mu.Unlock()
	if h, ok := o.reg.Get(jobType, scope); ok {
		return h.JobID, nil
	}
	def, ok := executor.Get(jobType)
	if !ok {
		return "", executor.ErrNotFound
	}
	if len(items) == 0 {
		return "", ErrNoItems
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	jobID, err := o.store.Create(ctx, scope, jobType, ids)
	if err != nil {
		// 创建失败不致命：以本地ID继续运行，检查点/清退同样软失败，
		// 代价是本次运行不可恢复
		logging.L().Warn(ctx, "create job failed, running without persistence", "type", jobType, "scope", scope, "err", err)
		jobID = uuid.NewString()
	}
	h, created := o.reg.StartBatch(jobType, scope, jobID, def.Label, len(items), 0)
	if !created {
		// 恢复流程抢注了同键句柄：清退刚建出的重复记录，避免孤儿重跑
		if err == nil {
			if rerr := o.store.Retire(ctx, jobID); rerr != nil {
				logging.L().Warn(ctx, "retire duplicate job failed", "jobId", jobID, "err", rerr)
			}
		}
		return h.JobID, nil
	}
	r := newRunner(o.store, o.reg, jobID, Descriptor{Type: jobType, Scope: scope, Items: items, Def: def})
	go r.run(h.Ctx)
	return jobID, nil
}

// startLock 返回 (type, scope) 对应的触发锁，不同键互不阻塞。
func (o *Orchestrator) startLock(key registry.Key) *sync.Mutex {
	o.startMu.Lock()
	defer o.startMu.Unlock()
	mu, ok := o.starts[key]
	if !ok {
		mu = &sync.Mutex{}
		o.starts[key] = mu
	}
	return mu
}

// CancelBatchTask 请求协作式取消：置取消信号，在途条目不被强行中断。
// 返回是否存在可取消的任务。
func (o *Orchestrator) CancelBatchTask(jobType, scope string) bool {
	h, ok := o.reg.Get(jobType, scope)
	if !ok {
		return false
	}
	h.Cancel()
	return true
}

// OnTaskEnd 订阅任务完结（成功或失败），一次性回调。
func (o *Orchestrator) OnTaskEnd(jobID string, fn func(registry.Status)) bool {
	return o.reg.OnTaskEnd(jobID, fn)
}

// OnTaskSucceeded 仅在成功完结时回调，用于阶段串联：
// 失败终态绝不触发下一阶段。
func (o *Orchestrator) OnTaskSucceeded(jobID string, fn func()) bool {
	return o.reg.OnTaskEnd(jobID, func(st registry.Status) {
		if st == registry.StatusCompleted {
			fn()
		}
	})
}

// RegisterSingleTask 注册一次性任务（无持久化记录，仅进度可见性）。
// 返回任务ID；同键已有任务时返回已有任务ID且 created=false。
func (o *Orchestrator) RegisterSingleTask(jobType, scope, label string) (id string, created bool) {
	h, created := o.reg.StartSingle(jobType, scope, label)
	return h.JobID, created
}

// CompleteSingleTask 标记一次性任务成功。
func (o *Orchestrator) CompleteSingleTask(id string) {
	o.reg.Advance(id)
	o.reg.Complete(id)
}

// FailSingleTask 标记一次性任务失败。
func (o *Orchestrator) FailSingleTask(id string) { o.reg.Fail(id) }

// Start 执行激活期流程并启动后台上报。
// 功能：
// 1) 运行一次恢复流程，把存储里的未完结任务重挂 Runner；
// 2) 配置了远端 API 时，启动进度上报与心跳任务；
// 生命周期：受传入 ctx 控制，ctx.Done 时后台协程全部退出。
func (o *Orchestrator) Start(ctx context.Context) {
	o.Resume(ctx)
	if o.api != nil && o.opt.ServerAddr != "" {
		rep := scheduler.NewReporter(o.api, o.opt.ServerAddr, snapshotLister{o.reg}, o.opt.AppName, int(o.opt.ReportEvery.Seconds()))
		rep.Start(ctx)
		hb := scheduler.NewHeartbeat(o.api, o.opt.ServerAddr, o.opt.AppName, int(o.opt.HeartbeatEvery.Seconds()))
		hb.Start(ctx)
	}
}

// snapshotLister 适配上报任务对运行列表的依赖（仅用到 ListRunning）。
type snapshotLister struct{ reg *registry.Manager }

// ListRunning 将目录快照映射为上报用精简视图。
func (a snapshotLister) ListRunning(ctx context.Context) ([]scheduler.Running, error) {
	views := a.reg.Snapshot()
	out := make([]scheduler.Running, 0, len(views))
	for _, v := range views {
		out = append(out, scheduler.Running{
			JobID:    v.JobID,
			Type:     v.Type,
			Scope:    v.Scope,
			Done:     v.Done,
			Total:    v.Total,
			Progress: v.Progress,
		})
	}
	return out, nil
}

// EstimateDuration 按注册的单条目预估耗时估算整批时长，仅供 UI 提示。
func EstimateDuration(jobType string, count int) time.Duration {
	def, ok := executor.Get(jobType)
	if !ok || def.Estimate <= 0 {
		return 0
	}
	return time.Duration(count) * def.Estimate
}
