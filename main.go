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

	"videoChat/config"
	"videoChat/llm"
	"videoChat/server"
	"videoChat/session"
	"videoChat/storage"
	"videoChat/translate"
	"videoChat/youtube"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !cfg.HasValidAPI() {
		config.PrintConfigInstructions()
	}

	embedder, generator, err := llm.NewProvider(cfg)
	if err != nil {
		log.Fatalf("failed to init LLM provider: %v", err)
	}
	log.Printf("LLM provider initialized: %s", cfg.Provider)

	store := storage.Init(cfg)

	source := youtube.NewClient()
	translator := translate.NewGoogleTranslator()

	manager := session.NewManager(cfg, source, translator, embedder, generator, store)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(manager, source).Routes(),
	}

	go func() {
		log.Printf("Server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
