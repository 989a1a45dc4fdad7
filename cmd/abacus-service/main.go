// Package main provides the entry point for abacus-service.
//
// abacus-service hosts calculator sessions:
// - REST API for programmatic access
// - Web page with a clickable calculator
// - MCP server for tool-driven access
//
// Usage:
//
//	abacus-service                    Start the service (default)
//	abacus-service serve              Start the service
//	abacus-service version            Show version
//	abacus-service status             Show service status
//	abacus-service stop               Stop the running service
//	abacus-service mcp                Start MCP server (stdio mode)
package main

import (
	"fmt"
	"os"

	"github.com/ternarybob/abacus/internal/api"
	"github.com/ternarybob/abacus/internal/config"
	"github.com/ternarybob/abacus/internal/logger"
	"github.com/ternarybob/abacus/internal/mcp"
	"github.com/ternarybob/abacus/internal/service"
	"github.com/ternarybob/abacus/pkg/session"
)

// version is set via -ldflags at build time
var version = "dev"

func main() {
	api.SetVersion(version)

	if len(os.Args) < 2 {
		if err := cmdServe(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var err error
	switch os.Args[1] {
	case "serve", "start":
		err = cmdServe()
	case "version", "-v", "--version":
		cmdVersion()
	case "status":
		err = cmdStatus()
	case "stop":
		err = cmdStop()
	case "mcp", "mcp-server":
		err = cmdMCP()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`abacus-service - Calculator session service

Usage:
  abacus-service [command]

Commands:
  serve         Start the service (default)
  version       Show version information
  status        Show service status
  stop          Stop the running service
  mcp           Start MCP server (stdio mode)
  help          Show this help

Configuration:
  Config file: ~/.abacus-service/config.yaml or config.toml
  (or $APPDATA/abacus-service on Windows)

Examples:
  abacus-service                   Start the service
  curl -X POST localhost:8430/sessions
  curl -d '{"input":"3+4="}' localhost:8430/sessions/<id>/keys`)
}

func cmdVersion() {
	fmt.Printf("abacus-service version %s\n", version)
}

func newStore(cfg *config.Config) *session.MemoryStore {
	return session.NewMemoryStore(session.Options{
		MaxSessions: cfg.Calculator.MaxSessions,
		ErrorText:   cfg.Calculator.ErrorText,
		Logger:      logger.GetLogger(),
	})
}

func cmdServe() error {
	cfgPath := config.DefaultConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.SetupLogger(cfg)
	defer logger.Stop()

	if running, pid := service.IsRunning(cfg); running {
		return fmt.Errorf("service already running (PID %d)", pid)
	}

	apiServer := api.NewServer(cfg, newStore(cfg), log)

	// Live reload applies to logging only; listener and limits need a restart.
	watcher, err := config.NewWatcher(cfgPath,
		func(updated *config.Config) {
			logger.SetLevel(updated.Logging.Level).Info().
				Str("level", updated.Logging.Level).
				Msg("Configuration reloaded")
		},
		func(err error) {
			logger.GetLogger().Warn().Err(err).Msg("Configuration reload failed")
		},
	)
	if err != nil {
		log.Warn().Err(err).Msg("Config watcher unavailable")
	} else {
		if err := watcher.Start(); err != nil {
			log.Warn().Err(err).Str("path", cfgPath).Msg("Config watcher not started")
		}
		defer watcher.Stop()
	}

	daemon := service.NewDaemon(cfg, log)
	if err := daemon.Start(apiServer.Handler()); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	fmt.Printf("abacus-service v%s started on %s\n", version, cfg.Address())
	fmt.Printf("Web UI: http://%s/\n", cfg.Address())
	fmt.Printf("API: http://%s/sessions\n", cfg.Address())

	daemon.Wait()

	return nil
}

func cmdStatus() error {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	running, pid := service.IsRunning(cfg)
	if running {
		fmt.Printf("abacus-service: running (PID %d)\n", pid)
		fmt.Printf("Address: %s\n", cfg.Address())
	} else {
		fmt.Println("abacus-service: stopped")
	}

	return nil
}

func cmdStop() error {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	running, pid := service.IsRunning(cfg)
	if !running {
		fmt.Println("abacus-service is not running")
		return nil
	}

	fmt.Printf("Stopping abacus-service (PID %d)...\n", pid)
	if err := service.StopRunning(cfg); err != nil {
		return err
	}

	fmt.Println("abacus-service stopped")
	return nil
}

func cmdMCP() error {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		cfg = config.DefaultConfig()
	}

	if !cfg.MCP.Enabled {
		return fmt.Errorf("mcp is disabled in configuration")
	}

	// stdout carries the protocol; log to file only
	cfg.Logging.Output = []string{"file"}
	logger.SetupLogger(cfg)
	defer logger.Stop()

	return mcp.NewServer(newStore(cfg), version).ServeStdio()
}
