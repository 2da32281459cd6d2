package main

import (
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/bassamadnan/triage/backend"
	"github.com/bassamadnan/triage/classic"
	"github.com/bassamadnan/triage/clipboard"
	"github.com/bassamadnan/triage/config"
	"github.com/bassamadnan/triage/logging"
	"github.com/bassamadnan/triage/tui"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	ui := flag.String("ui", "", "frontend to run: bubbletea or classic")
	backendURL := flag.String("backend", "", "triage backend base URL")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *ui != "" {
		cfg.Client.UI = *ui
	}
	if *backendURL != "" {
		cfg.Client.BackendURL = *backendURL
	}

	// The terminal belongs to the UI, so logs always go to a file.
	logFile := cfg.Client.LogFile
	if logFile == "" || logFile == "-" {
		logFile = "triage.log"
	}
	logger, err := logging.New(logFile, cfg.Client.Debug)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("application starting", zap.String("ui", cfg.Client.UI), zap.String("backend", cfg.Client.BackendURL))

	api, err := backend.NewClient(cfg.Client.BackendURL, cfg.Client.RequestTimeout)
	if err != nil {
		logger.Fatal("invalid backend configuration", zap.Error(err))
	}
	clip := clipboard.NewSystem()

	switch cfg.Client.UI {
	case "classic":
		app := classic.NewApp(classic.Options{API: api, Clipboard: clip, Logger: logger})
		err = app.Run()
	default:
		model := tui.NewModel(tui.Options{API: api, Clipboard: clip, Logger: logger, BackendURL: cfg.Client.BackendURL})
		_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	}
	if err != nil {
		logger.Error("ui stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("application stopped")
}
