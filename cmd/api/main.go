package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kulim/agrimarket/backend/internal/analysis/intent"
	"github.com/kulim/agrimarket/backend/internal/config"
	"github.com/kulim/agrimarket/backend/internal/handler"
	"github.com/kulim/agrimarket/backend/internal/model/knowledge"
	"github.com/kulim/agrimarket/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	kb, suggestions, err := knowledge.Open(cfg.Assistant.KnowledgeFile)
	if err != nil {
		log.Fatalf("failed to load knowledge base: %v", err)
	}
	if cfg.Assistant.KnowledgeFile != "" {
		log.Printf("knowledge base loaded from %s", cfg.Assistant.KnowledgeFile)
	}
	if len(cfg.Assistant.Suggestions) > 0 {
		suggestions = cfg.Assistant.Suggestions
	}

	classifier := intent.New(kb)
	chatService := chat.NewService(classifier, chat.Options{
		AssistantName: cfg.Assistant.Name,
		Greeting:      cfg.Assistant.Greeting,
		ReplyDelay:    cfg.Assistant.ReplyDelay,
		Suggestions:   suggestions,
	})
	defer chatService.Shutdown()

	log.Printf("%s ready: %d topics, reply delay %s", cfg.Assistant.Name, len(kb.Entries()), cfg.Assistant.ReplyDelay)

	router := handler.NewRouter(handler.Dependencies{
		Knowledge:      kb,
		Classifier:     classifier,
		Chat:           chatService,
		Suggestions:    suggestions,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("assistant backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Printf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
