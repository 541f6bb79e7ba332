package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Team-Watson-Denver/plugin-privy/internal/actions"
	"github.com/Team-Watson-Denver/plugin-privy/internal/api"
	"github.com/Team-Watson-Denver/plugin-privy/internal/config"
	"github.com/Team-Watson-Denver/plugin-privy/internal/settings"
	"github.com/Team-Watson-Denver/plugin-privy/pkg/logger"
	"github.com/Team-Watson-Denver/plugin-privy/pkg/plugin"
)

// main 是 Privy 插件守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("privyd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("PRIVYD_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "privyd.yaml")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// 凭证只从进程环境变量读取，配置文件里不放密钥。
	p := actions.NewPlugin()
	pluginCfg := map[string]any{
		"timeout": cfg.Privy.Timeout.Std(),
	}
	if cfg.Privy.BaseURL != "" {
		pluginCfg["base_url"] = cfg.Privy.BaseURL
	}

	manager := plugin.NewManager(
		plugin.WithResource(actions.ResourceSettings, settings.FromEnv()),
	)
	if err := manager.Register(actions.PluginID, p, pluginCfg); err != nil {
		return err
	}
	if err := manager.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		if err := manager.StopAll(context.Background()); err != nil {
			logger.L().Warn("停止插件失败", "error", err)
		}
	}()

	server := api.NewServer(cfg.Server.Address, p.Registry())

	logger.L().Info("privyd 已启动", "address", cfg.Server.Address)
	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
