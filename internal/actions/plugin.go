package actions

import (
	"errors"
	"fmt"
	"time"

	"github.com/Team-Watson-Denver/plugin-privy/internal/settings"
	"github.com/Team-Watson-Denver/plugin-privy/pkg/plugin"
)

// PluginID 是本插件在宿主中的注册标识。
const PluginID = "privy-wallet"

// ResourceSettings 是宿主通过 ExecutionContext.Resources 提供配置存储的键。
const ResourceSettings = "settings"

// Plugin 将 Privy 动作注册表包装成宿主可挂载的插件实现。
type Plugin struct {
	opts     []Option
	baseURL  string
	timeout  time.Duration
	registry *Registry
}

// NewPlugin 创建插件实例，额外的 Option 会透传给内部注册表。
func NewPlugin(opts ...Option) *Plugin {
	return &Plugin{opts: opts}
}

// Info 实现 plugin.Plugin。
func (p *Plugin) Info() plugin.Info {
	return plugin.Info{
		ID:          PluginID,
		Name:        "Privy custodial wallet actions",
		Description: "Exposes Privy policy and wallet operations as named agent actions.",
		Author:      "Team Watson Denver",
		Version:     "1.0.0",
		Category:    plugin.TypeActions,
		Capabilities: []plugin.Capability{
			plugin.CapabilityNetwork,
			plugin.CapabilitySettings,
		},
	}
}

// Configure 实现 plugin.Plugin，识别 base_url 与 timeout 覆盖项。
func (p *Plugin) Configure(cfg map[string]any) error {
	if raw, ok := cfg["base_url"]; ok {
		baseURL, ok := raw.(string)
		if !ok {
			return fmt.Errorf("base_url 必须是字符串，收到 %T", raw)
		}
		p.baseURL = baseURL
	}
	if raw, ok := cfg["timeout"]; ok {
		switch v := raw.(type) {
		case time.Duration:
			p.timeout = v
		case string:
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("解析 timeout 失败: %w", err)
			}
			p.timeout = parsed
		default:
			return fmt.Errorf("timeout 必须是时长字符串，收到 %T", raw)
		}
	}
	return nil
}

// Init 实现 plugin.Plugin：从宿主资源中取得配置存储并构建注册表。
// 宿主未提供时回退到进程环境变量。
func (p *Plugin) Init(ctx *plugin.ExecutionContext) error {
	if ctx == nil {
		return errors.New("缺少插件执行上下文")
	}

	var store settings.Store
	if raw, ok := ctx.Resources[ResourceSettings]; ok {
		store, ok = raw.(settings.Store)
		if !ok {
			return fmt.Errorf("资源 %s 不是合法的配置存储: %T", ResourceSettings, raw)
		}
	} else {
		store = settings.FromEnv()
	}

	opts := p.opts
	if p.timeout > 0 {
		opts = append([]Option{WithTimeout(p.timeout)}, opts...)
	}
	if p.baseURL != "" {
		opts = append([]Option{WithBaseURL(p.baseURL)}, opts...)
	}
	p.registry = NewRegistry(store, opts...)
	return nil
}

// Start 实现 plugin.Plugin。动作调用本身是无状态的，无需常驻协程。
func (p *Plugin) Start(*plugin.ExecutionContext) error {
	if p.registry == nil {
		return errors.New("插件尚未初始化")
	}
	return nil
}

// Stop 实现 plugin.Plugin。
func (p *Plugin) Stop(*plugin.ExecutionContext) error {
	return nil
}

// Registry 返回动作注册表，供宿主的动作路由使用。
func (p *Plugin) Registry() *Registry {
	return p.registry
}
