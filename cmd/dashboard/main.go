package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/dashboard/internal/config"
	"git.home.luguber.info/inful/dashboard/internal/daemon"
	"git.home.luguber.info/inful/dashboard/internal/dashboard"
	apperrors "git.home.luguber.info/inful/dashboard/internal/errors"
	"git.home.luguber.info/inful/dashboard/internal/logfields"
	"git.home.luguber.info/inful/dashboard/internal/render"
	"git.home.luguber.info/inful/dashboard/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"dashboard.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Update struct {
		DryRun bool `help:"Render without writing the output file"`
	} `cmd:"" help:"Run a single dashboard update"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Lint struct {
		File string `arg:"" optional:"" help:"Document to check (defaults to configured readme_path)"`
	} `cmd:"" help:"Verify marker structure and markdown health of the rendered document"`

	Daemon struct {
	} `cmd:"" help:"Run scheduled dashboard updates"`

	Version struct {
	} `cmd:"" help:"Print version information"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "update":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", logfields.Error(err))
			os.Exit(1)
		}
		if err := runUpdate(cfg, CLI.Update.DryRun); err != nil {
			slog.Error("Update failed", logfields.Error(err))
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Config, CLI.Init.Force); err != nil {
			slog.Error("Init failed", logfields.Error(err))
			os.Exit(1)
		}
		slog.Info("Configuration written", logfields.Path(CLI.Config))
	case "lint", "lint <file>":
		if err := runLint(CLI.Lint.File); err != nil {
			slog.Error("Lint failed", logfields.Error(err))
			os.Exit(1)
		}
	case "daemon":
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			slog.Error("Failed to load configuration", logfields.Error(err))
			os.Exit(1)
		}
		if err := runDaemon(cfg); err != nil {
			slog.Error("Daemon failed", logfields.Error(err))
			os.Exit(1)
		}
	case "version":
		fmt.Printf("dashboard %s (built %s, commit %s)\n", version.Version, version.BuildTime, version.GitCommit)
	}
}

func runUpdate(cfg *config.Config, dryRun bool) error {
	orch := dashboard.New(cfg, nil)

	if dryRun {
		// Redirect the write by rendering against a throwaway copy: load,
		// render, and report without touching the configured path.
		tmp := *cfg
		tmpDir, err := os.MkdirTemp("", "dashboard-dry-*")
		if err != nil {
			return err
		}
		defer func() { _ = os.RemoveAll(tmpDir) }()
		if data, err := os.ReadFile(cfg.Output.ReadmePath); err == nil {
			if err := os.WriteFile(tmpDir+"/README.md", data, 0644); err != nil {
				return err
			}
		}
		tmp.Output.ReadmePath = tmpDir + "/README.md"
		orch = dashboard.New(&tmp, nil)
	}

	outcome, err := orch.Run(context.Background())
	if err != nil {
		return err
	}

	slog.Info("Update completed",
		logfields.RunID(outcome.RunID),
		logfields.Changed(outcome.Changed),
		slog.Int("sections_unavailable", outcome.UnavailableSections()))
	return nil
}

func runLint(file string) error {
	if file == "" {
		cfg, err := config.Load(CLI.Config)
		if err != nil {
			return err
		}
		file = cfg.Output.ReadmePath
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	issues, err := render.Verify(data)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		slog.Warn("Lint issue", logfields.Path(file), slog.String("issue", issue.Message))
	}
	if len(issues) > 0 {
		return apperrors.New(apperrors.CategoryRender, apperrors.SeverityError, fmt.Sprintf("%d lint issue(s) found", len(issues)))
	}
	slog.Info("Document is healthy", logfields.Path(file))
	return nil
}

func runDaemon(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	d, err := daemon.New(cfg, CLI.Config)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	slog.Info("Daemon started, waiting for shutdown signal...")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping daemon...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := d.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	slog.Info("Daemon stopped successfully")
	return nil
}
