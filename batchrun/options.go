package batchrun

import (
	"time"

	"github.com/castpipe/batchrun-go/client"
	"github.com/castpipe/batchrun-go/config"
	"github.com/castpipe/batchrun-go/registry"
)

// Options 组件运行参数。
// 功能：描述当前作用域与 Job Store 服务的交互周期；不含任何 UI 配置。
type Options struct {
	ServerAddr     string        // Job Store 服务地址，如 127.0.0.1:7700
	Scope          string        // 当前工作区（制作/项目）编号
	AppName        string        // 上报用应用名
	ReportEvery    time.Duration // 进度上报周期
	HeartbeatEvery time.Duration // 心跳上报周期
}

// withDefaults 填充默认值。
func (o *Options) withDefaults() {
	if o.ReportEvery <= 0 {
		o.ReportEvery = 10 * time.Second
	}
	if o.HeartbeatEvery <= 0 {
		o.HeartbeatEvery = 15 * time.Second
	}
}

type orchestratorConfig struct {
	opt   Options
	store Store
	api   client.JobStoreAPI
	reg   *registry.Manager
}

// Option 构造 Orchestrator 的可选项。
type Option func(*orchestratorConfig)

// WithServerAddr 设置 Job Store 服务地址。
func WithServerAddr(addr string) Option { return func(c *orchestratorConfig) { c.opt.ServerAddr = addr } }

// WithScope 设置当前作用域。
func WithScope(scope string) Option { return func(c *orchestratorConfig) { c.opt.Scope = scope } }

// WithAppName 设置应用名。
func WithAppName(name string) Option { return func(c *orchestratorConfig) { c.opt.AppName = name } }

// WithReportEvery 设置进度上报周期。
func WithReportEvery(d time.Duration) Option {
	return func(c *orchestratorConfig) { c.opt.ReportEvery = d }
}

// WithHeartbeatEvery 设置心跳周期。
func WithHeartbeatEvery(d time.Duration) Option {
	return func(c *orchestratorConfig) { c.opt.HeartbeatEvery = d }
}

// WithStore 注入任务存储实现（内存/数据库/远端适配均可）。
func WithStore(s Store) Option { return func(c *orchestratorConfig) { c.store = s } }

// WithStoreAPI 注入远端 Job Store 客户端；未显式 WithStore 时
// 将基于它构造远端存储。
func WithStoreAPI(api client.JobStoreAPI) Option { return func(c *orchestratorConfig) { c.api = api } }

// WithRegistry 注入任务目录（缺省新建；测试可传入独立实例）。
func WithRegistry(m *registry.Manager) Option { return func(c *orchestratorConfig) { c.reg = m } }

// WithConfig 从配置文件映射选项。
func WithConfig(cfg config.Config) Option {
	return func(c *orchestratorConfig) {
		c.opt.ServerAddr = cfg.ServerAddr
		c.opt.Scope = cfg.Scope
		c.opt.AppName = cfg.AppName
		c.opt.ReportEvery = time.Duration(cfg.ReportSeconds) * time.Second
		c.opt.HeartbeatEvery = time.Duration(cfg.HeartbeatSeconds) * time.Second
	}
}
