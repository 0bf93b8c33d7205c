package main

import (
	"fmt"
	"os"

	"github.com/horizon/internal/cli"
	"github.com/horizon/internal/config"
	"github.com/horizon/internal/db"
	"github.com/horizon/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	observer := service.NewLogFocusObserver(os.Stderr, cfg.LogLevel)
	app := cli.NewApp(cfg, db.DB, observer)

	// 仅在终端输出时渲染颜色
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
