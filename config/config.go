package config

// Config 组件运行所需的完整配置（可选）。
// 功能：承载 Job Store 服务地址、当前作用域与上报周期；
// 数据库连接串供选用 gormstore 的宿主参考，组件本身不建连接。
type Config struct {
	ServerAddr string // Job Store 服务地址，例如 127.0.0.1:7700
	Scope      string // 当前工作区（制作/项目）编号
	AppName    string // 上报用应用名

	ReportSeconds    int // 进度上报周期
	HeartbeatSeconds int // 心跳上报周期

	Database struct {
		DataSource string // 形如 user:pass@tcp(127.0.0.1:3306)/db?charset=utf8mb4&parseTime=true&loc=Local
	}
}
