package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finsight/internal/config"
	"finsight/internal/logger"
	"finsight/internal/server"
)

const shutdownTimeout = 10 * time.Second

type flags struct {
	port    int
	devMode bool
	dataDir string
}

func parseFlags() flags {
	var f flags
	flag.IntVar(&f.port, "port", 0, "监听端口，config.toml 未指定 port 时生效")
	flag.BoolVar(&f.devMode, "dev", false, "开发模式（未命中路由转发到前端 dev server）")
	flag.StringVar(&f.dataDir, "dataDir", "", "数据目录，覆盖 config.toml")
	flag.Parse()
	return f
}

// apply 把命令行参数叠加到配置上；配置文件显式写了 port 时以文件为准
func (f flags) apply(cfg *config.AppConfig, info config.LoadConfigInfo) {
	if f.port > 0 && !info.PortSpecified {
		cfg.Server.Port = f.port
	}
	if f.devMode {
		cfg.Server.DevMode = true
	}
	if f.dataDir != "" {
		cfg.Data.DataDir = f.dataDir
	}
}

func main() {
	f := parseFlags()
	logger.Init()
	log := logger.Default()

	if err := run(f, log); err != nil {
		log.Error("finsight exited", "error", err)
		os.Exit(1)
	}
}

func run(f flags, log *slog.Logger) error {
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Warn("config unreadable, falling back to defaults", "error", err)
		cfg, info = config.DefaultConfig(), config.LoadConfigInfo{}
	}
	f.apply(cfg, info)

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("listening",
		"addr", addr,
		"config", info.Path,
		"config_found", info.FileFound,
		"data_dir", config.ResolvePath(cfg.Data.DataDir),
		"dev_mode", cfg.Server.DevMode,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(addr) }()

	select {
	case err := <-errCh:
		_ = srv.Shutdown(context.Background())
		return err
	case <-ctx.Done():
	}

	log.Info("signal received, shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
