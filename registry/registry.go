package registry

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
)

// Status 运行句柄的状态。
type Status int

const (
	StatusRunning Status = iota + 1
	StatusCompleted
	StatusFailed
)

// Key 运行句柄的唯一键：同一作用域内同类任务最多一个在跑。
type Key struct {
	Type  string
	Scope string
}

// Handle 维护一个运行中任务的上下文、取消句柄与实时进度。
// 仅存在于进程内存；页面/进程结束即消失，持久化靠任务记录本身。
type Handle struct {
	Key   Key
	JobID string
	Label string

	Ctx    context.Context
	Cancel context.CancelFunc

	mu        sync.Mutex
	done      int
	total     int
	status    Status
	listeners []func(Status)
}

// View 句柄的只读快照，供任意数量的 UI 面板渲染同一份进度。
type View struct {
	JobID    string
	Type     string
	Scope    string
	Label    string
	Done     int
	Total    int
	Progress int
	Status   Status
}

// View 生成当前快照。
func (h *Handle) View() View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return View{
		JobID:    h.JobID,
		Type:     h.Key.Type,
		Scope:    h.Key.Scope,
		Label:    h.Label,
		Done:     h.done,
		Total:    h.total,
		Progress: progressOf(h.done, h.total),
		Status:   h.status,
	}
}

// progressOf 按完成计数换算百分比，进度只增不减。
func progressOf(done, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// finishedCap 终态缓存上限：仅保留最近完结的任务，超出后淘汰最旧条目。
// 长生命周期的编辑会话会跑很多批任务，缓存不能随进程无界增长。
const finishedCap = 128

// Manager 进程生命周期内的运行任务目录。
// 设计：显式可注入的服务而非包级单例，测试可为每个用例创建独立实例。
type Manager struct {
	mu            sync.RWMutex
	handles       map[Key]*Handle
	byJob         map[string]*Handle
	finished      map[string]Status
	finishedOrder []string
	subs          map[int]func()
	nextSub       int
}

// NewManager 构造。
func NewManager() *Manager {
	return &Manager{
		handles:  map[Key]*Handle{},
		byJob:    map[string]*Handle{},
		finished: map[string]Status{},
		subs:     map[int]func(){},
	}
}

// IsRunning 判断 (type, scope) 是否已有任务在跑，用于禁用重复触发入口。
func (m *Manager) IsRunning(jobType, scope string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.handles[Key{Type: jobType, Scope: scope}]
	return ok
}

// Get 按键查询运行句柄。
func (m *Manager) Get(jobType, scope string) (*Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.handles[Key{Type: jobType, Scope: scope}]
	return h, ok
}

// GetByJob 按任务ID查询运行句柄。
func (m *Manager) GetByJob(jobID string) (*Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.byJob[jobID]
	return h, ok
}

// StartBatch 注册批量任务句柄。
// 若该键已有句柄，返回已有句柄且 created=false——同键并发触发仅第一个生效。
// done 为恢复场景下已完成的条目数，进度从上次检查点继续而非归零。
func (m *Manager) StartBatch(jobType, scope, jobID, label string, total, done int) (h *Handle, created bool) {
	m.mu.Lock()
	key := Key{Type: jobType, Scope: scope}
	if old, ok := m.handles[key]; ok {
		m.mu.Unlock()
		return old, false
	}
	ctx, cancel := context.WithCancel(context.Background())
	h = &Handle{Key: key, JobID: jobID, Label: label, Ctx: ctx, Cancel: cancel, total: total, done: done, status: StatusRunning}
	m.handles[key] = h
	m.byJob[jobID] = h
	m.mu.Unlock()
	m.notify()
	return h, true
}

// StartSingle 注册一次性任务句柄（无持久化记录，仅进度可见性）。
// 复用同一键锁：同键已有任务时返回已有句柄。
func (m *Manager) StartSingle(jobType, scope, label string) (h *Handle, created bool) {
	m.mu.Lock()
	key := Key{Type: jobType, Scope: scope}
	if old, ok := m.handles[key]; ok {
		m.mu.Unlock()
		return old, false
	}
	ctx, cancel := context.WithCancel(context.Background())
	h = &Handle{Key: key, JobID: uuid.NewString(), Label: label, Ctx: ctx, Cancel: cancel, total: 1, status: StatusRunning}
	m.handles[key] = h
	m.byJob[h.JobID] = h
	m.mu.Unlock()
	m.notify()
	return h, true
}

// Advance 将任务完成计数 +1 并通知订阅者。
func (m *Manager) Advance(jobID string) {
	m.mu.RLock()
	h, ok := m.byJob[jobID]
	m.mu.RUnlock()
	if !ok {
		return
	}
	h.mu.Lock()
	if h.done < h.total {
		h.done++
	}
	h.mu.Unlock()
	m.notify()
}

// Complete 标记任务成功完结，移除句柄并触发一次性监听器。
func (m *Manager) Complete(jobID string) { m.finish(jobID, StatusCompleted) }

// Fail 标记任务失败完结。已持久化的检查点保持不变，任务在存储中仍为未完结。
func (m *Manager) Fail(jobID string) { m.finish(jobID, StatusFailed) }

// Drop 移除句柄但不触发监听器，用于协作式取消：
// 任务停在上一个检查点，不算成功也不算失败，下次激活可继续。
func (m *Manager) Drop(jobID string) {
	m.mu.Lock()
	h, ok := m.byJob[jobID]
	if ok {
		delete(m.handles, h.Key)
		delete(m.byJob, jobID)
		h.Cancel()
	}
	m.mu.Unlock()
	if ok {
		m.notify()
	}
}

// finish 完结并派发监听器。监听器在锁外调用，允许其中再次发起新任务（阶段串联）。
func (m *Manager) finish(jobID string, st Status) {
	m.mu.Lock()
	h, ok := m.byJob[jobID]
	var fns []func(Status)
	if ok {
		delete(m.handles, h.Key)
		delete(m.byJob, jobID)
		m.finished[jobID] = st
		m.finishedOrder = append(m.finishedOrder, jobID)
		if len(m.finishedOrder) > finishedCap {
			old := m.finishedOrder[0]
			m.finishedOrder = m.finishedOrder[1:]
			delete(m.finished, old)
		}
		h.mu.Lock()
		h.status = st
		fns = h.listeners
		h.listeners = nil
		h.mu.Unlock()
		h.Cancel()
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	for _, fn := range fns {
		fn(st)
	}
	m.notify()
}

// OnTaskEnd 订阅任务完结（成功或失败），一次性回调。
// 任务已完结时立即以终态回调；任务不存在或终态已被淘汰返回 false。
func (m *Manager) OnTaskEnd(jobID string, fn func(Status)) bool {
	m.mu.RLock()
	h, running := m.byJob[jobID]
	st, done := m.finished[jobID]
	m.mu.RUnlock()
	if running {
		h.mu.Lock()
		if h.status == StatusRunning {
			h.listeners = append(h.listeners, fn)
			h.mu.Unlock()
			return true
		}
		st = h.status
		h.mu.Unlock()
		fn(st)
		return true
	}
	if done {
		fn(st)
		return true
	}
	return false
}

// Snapshot 返回全部运行句柄的只读视图。
func (m *Manager) Snapshot() []View {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]View, 0, len(m.handles))
	for _, h := range m.handles {
		out = append(out, h.View())
	}
	return out
}

// Subscribe 注册变更通知（任一句柄注册/推进/完结时回调），返回用于退订的编号。
func (m *Manager) Subscribe(fn func()) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSub++
	m.subs[m.nextSub] = fn
	return m.nextSub
}

// Unsubscribe 退订。
func (m *Manager) Unsubscribe(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, id)
}

// notify 在锁外触发全部订阅者。
func (m *Manager) notify() {
	m.mu.RLock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
