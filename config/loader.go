package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// 上报周期缺省值，与 Options 的缺省保持一致。
const (
	defaultReportSeconds    = 10
	defaultHeartbeatSeconds = 15
)

// Load 从 YAML 文件加载配置。
// 功能：读取并解析配置文件，归一化服务地址并为缺省的上报周期补默认值。
// 参数：file 配置文件路径。
// 返回：配置对象；文件缺失、YAML 非法或周期为负时报错。
func Load(file string) (Config, error) {
	var c Config
	b, err := os.ReadFile(file)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", file, err)
	}
	c.normalize()
	if err := c.validate(); err != nil {
		return c, fmt.Errorf("config %s: %w", file, err)
	}
	return c, nil
}

// MustLoad 从 YAML 文件加载配置（失败 panic）。
func MustLoad(file string) Config {
	c, err := Load(file)
	if err != nil {
		panic(err)
	}
	return c
}

// normalize 去除地址两端空白并补齐缺省周期。
func (c *Config) normalize() {
	c.ServerAddr = strings.TrimSpace(c.ServerAddr)
	c.Scope = strings.TrimSpace(c.Scope)
	if c.ReportSeconds == 0 {
		c.ReportSeconds = defaultReportSeconds
	}
	if c.HeartbeatSeconds == 0 {
		c.HeartbeatSeconds = defaultHeartbeatSeconds
	}
}

// validate 拒绝无法运行的取值，零值缺省在 normalize 中处理。
func (c *Config) validate() error {
	if c.ReportSeconds < 0 {
		return fmt.Errorf("reportseconds must not be negative: %d", c.ReportSeconds)
	}
	if c.HeartbeatSeconds < 0 {
		return fmt.Errorf("heartbeatseconds must not be negative: %d", c.HeartbeatSeconds)
	}
	return nil
}
