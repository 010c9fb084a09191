package main

import (
	"fmt"

	"course-assistant-be/internal/bootstrap"
	"course-assistant-be/internal/config"
	"course-assistant-be/internal/pkg/logger"
	"course-assistant-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// bootFunc opens the database and builds the shared services. Tests replace it.
type bootFunc func() (*bootstrap.Core, func(), error)

func newRootCmd() *cobra.Command {
	return newRootCmdWith(boot)
}

func newRootCmdWith(b bootFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "ingest",
		Short:         "Load course catalogs and build the embedding index",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newJSONCmd(b), newEmbedCmd(b), newWorkerCmd(b))
	return root
}

func boot() (*bootstrap.Core, func(), error) {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		return nil, nil, fmt.Errorf("DB_CONNECTION_STRING is not set")
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	core, err := bootstrap.NewCore(db, cfg, sysLogger)
	if err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}

	cleanup := func() {
		core.Close()
		_ = database.Close(db)
		_ = sysLogger.Sync()
	}
	return core, cleanup, nil
}
