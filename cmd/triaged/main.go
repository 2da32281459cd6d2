// Command triaged serves the email triage API.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/bassamadnan/triage/config"
	"github.com/bassamadnan/triage/gmail"
	"github.com/bassamadnan/triage/llm"
	"github.com/bassamadnan/triage/logging"
	"github.com/bassamadnan/triage/mailer"
	"github.com/bassamadnan/triage/server"
	"github.com/bassamadnan/triage/store"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	sc := cfg.Server

	logger, err := logging.New(sc.LogFile, sc.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("triaged stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("triaged stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	sc := cfg.Server

	db, err := store.Open(ctx, sc.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("store opened", zap.String("path", sc.Database))

	var (
		source     server.Source
		gmailAgent *gmail.Client
	)
	switch sc.Source.Kind {
	case "gmail":
		filters, err := config.NewFilterManager(sc.FiltersFile)
		if err != nil {
			return err
		}
		gmailAgent, err = gmail.NewClient(ctx, gmail.Auth{
			CredentialsFile: sc.Source.Credentials,
			TokenFile:       sc.Source.Token,
		}, gmail.Options{
			Query:   sc.Source.Query,
			Workers: sc.FetchWorkers,
			Filters: filters,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		source = gmailAgent
	case "file":
		source = server.NewFileSource(sc.Source.File)
	}
	if source != nil {
		logger.Info("mail source ready", zap.String("source", source.Name()))
	}

	var sender server.Sender
	if sc.SMTP.Host != "" {
		smtpSender, err := mailer.NewSMTPSender(mailer.Config{
			Host:     sc.SMTP.Host,
			Port:     sc.SMTP.Port,
			Username: sc.SMTP.Username,
			Password: sc.SMTP.Password,
			From:     sc.SMTP.From,
		})
		if err != nil {
			return err
		}
		sender = smtpSender
	} else if gmailAgent != nil {
		sender = gmailAgent
	}

	provider, err := llm.NewProvider(ctx, llm.Settings{
		Provider: sc.LLM.Provider,
		Endpoint: sc.LLM.Endpoint,
		Model:    sc.LLM.Model,
		Region:   sc.LLM.Region,
		Timeout:  sc.LLM.Timeout,
	})
	if err != nil {
		return err
	}
	logger.Info("reply generator ready", zap.String("provider", provider.Name()))

	svc := server.NewService(server.ServiceConfig{
		Store:      db,
		Source:     source,
		Generator:  llm.NewReplier(provider, sc.LLM.ReplyPrompt),
		Sender:     sender,
		Logger:     logger,
		FetchLimit: sc.FetchLimit,
		SyncOnList: sc.PollInterval <= 0,
	})

	router := server.NewRouter(svc, sc.AllowOrigin, logger)
	return server.New(sc.Addr, router, svc, sc.PollInterval, logger).Run(ctx)
}
