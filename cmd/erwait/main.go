// Package main is the entry point for the ER wait-time dashboard.
// It initializes configuration, logging and services, and runs the Bubble Tea program.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/erwait-dashboard-tui/internal/app"
	"github.com/j-veylop/erwait-dashboard-tui/internal/config"
	"github.com/j-veylop/erwait-dashboard-tui/internal/logger"
	"github.com/j-veylop/erwait-dashboard-tui/internal/services"
	"github.com/j-veylop/erwait-dashboard-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/erwait-dashboard-tui/internal/ui/tabs/info"
	"github.com/j-veylop/erwait-dashboard-tui/internal/ui/tabs/trend"
	"github.com/j-veylop/erwait-dashboard-tui/internal/version"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info())
		os.Exit(0)
	}

	// Handle help flag
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	// 1. Load configuration from .env files, the YAML file and environment variables
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Route logs away from the terminal the TUI is about to take over
	logCloser, err := logger.Setup(cfg.LogFile, cfg.Debug)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	logger.Info("starting", "version", version.GetVersion(), "source", cfg.SourceDescription())

	// 3. Initialize the service manager: record source, metrics, auto refresh
	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	// Ensure cleanup on exit
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	svcManager.Start()

	// 4. Create the root Bubble Tea model
	model := app.NewModel(svcManager)

	// 5. Initialize tabs with shared state
	state := model.GetState()
	tabs := []app.Tab{
		dashboard.New(state, cfg),                         // Tab 0: Dashboard - both charts
		trend.New(state, svcManager.Categories().Names()), // Tab 1: Trend - session averages
		info.New(state, cfg),                              // Tab 2: Info - configuration and app info
	}
	model.SetTabs(tabs)

	// 6. Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	// 7. Run the TUI program. This blocks until the user quits.
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`erwait - emergency room wait-time dashboard

Usage:
  erwait [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Keyboard Shortcuts:
  1-3             Switch between tabs (Dashboard, Trend, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Scroll
  t               Toggle the trend window
  r               Refresh data
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  API_BASE_URL       Upstream base URL (default: http://localhost:3333)
  PERMANENCE_PATH    Permanence endpoint (default: /permanence)
  SEVERITY_PATH      Severity endpoint (default: /severity-and-permanence)
  RECORDS_FILE       Read records from a JSON file instead of HTTP
  HTTP_TIMEOUT       Upstream request timeout (default: 10s)
  REFRESH_INTERVAL   Auto refresh interval, 0 for manual (default: 0)
  BUCKET_HOURS       Bucket thresholds in hours (default: 6,12,24,48)
  DASHBOARD_TITLE    Dashboard heading (default: UPA São Carlos)
  NOTIFICATIONS      Desktop alert on growing long waits (default: true)
  METRICS_ADDR       Serve Prometheus metrics on this address
  CONFIG_FILE        YAML file with bucketHours and categories
  LOG_FILE           Write logs to this file (default: discarded)
  DEBUG              Enable debug logging

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/erwait/.env
  - ~/.erwait/.env
  - Parent directory`)
}
