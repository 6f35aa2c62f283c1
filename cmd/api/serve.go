package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/athena-chat/athena/internal/config"
	"github.com/athena-chat/athena/internal/handler"
	"github.com/athena-chat/athena/internal/llm"
	"github.com/athena-chat/athena/internal/model"
	natsclient "github.com/athena-chat/athena/internal/nats"
	"github.com/athena-chat/athena/internal/render"
	"github.com/athena-chat/athena/internal/service"
	"github.com/athena-chat/athena/internal/store"
	"github.com/athena-chat/athena/pkg/logger"
	"github.com/athena-chat/athena/pkg/tracing"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := newLogger(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting chat server",
		zap.String("title", cfg.Title),
		zap.String("provider", cfg.LLMProvider),
		zap.String("model", cfg.DefaultModel),
	)

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "athena-chat", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS when the event feed is enabled
	var (
		natsClient *natsclient.Client
		events     service.EventPublisher
	)
	if cfg.NATSEnabled {
		natsClient, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			return errors.Wrap(err, "failed to connect to NATS")
		}
		defer natsClient.Close()

		streamManager := natsclient.NewStreamManager(natsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			return errors.Wrap(err, "failed to ensure stream")
		}
		events = streamManager
	}

	// Initialize LLM client
	llmClient, err := newLLMClient(cfg)
	if err != nil {
		return err
	}

	// Initialize services
	st := store.NewFileStore(cfg.ConversationsFile, cfg.PersonasFile)
	conversationSvc, err := service.NewConversationService(st, events, log)
	if err != nil {
		return errors.Wrap(err, "failed to load conversations")
	}
	personaSvc, err := service.NewPersonaService(st, events, log)
	if err != nil {
		return errors.Wrap(err, "failed to load personas")
	}
	chatSvc := service.NewChatService(conversationSvc, personaSvc, llmClient, events, cfg.DefaultModel, cfg.Models, log)

	// Initialize handlers
	avatars := model.Avatars{User: cfg.UserAvatarURL, Assistant: cfg.AssistantAvatarURL}
	router := handler.NewRouter(handler.Handlers{
		Health:        handler.NewHealthHandler(natsClient),
		Session:       handler.NewSessionHandler(cfg.Title, avatars, conversationSvc, personaSvc, chatSvc, log),
		Conversations: handler.NewConversationHandler(conversationSvc, render.NewMarkdown(), log),
		Messages:      handler.NewMessageHandler(chatSvc, log),
		Personas:      handler.NewPersonaHandler(personaSvc, log),
	}, handler.RouterOptions{
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
	}, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return errors.Wrap(err, "server error")
	}

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	if err := conversationSvc.Save(shutdownCtx); err != nil {
		log.Error("failed to save conversations on shutdown", zap.Error(err))
	}

	log.Info("server stopped")
	return nil
}

func newLLMClient(cfg *config.Config) (llm.Client, error) {
	provider := llm.Provider(cfg.LLMProvider)
	opts := llm.Options{BaseURL: cfg.LLMBaseURL, APIKey: cfg.LLMAPIKey}
	if provider == llm.ProviderAnthropic {
		opts.APIKey = cfg.AnthropicAPIKey
	}

	client, err := llm.NewClient(provider, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LLM client")
	}
	return client, nil
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.Environment == "development" {
		return logger.NewDevelopment()
	}
	return logger.New(cfg.LogLevel, cfg.LogFormat)
}
