package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"chatpress/internal/config"
	"chatpress/internal/domain/conversation"
	"chatpress/internal/domain/image"
	"chatpress/internal/infrastructure/line"
	"chatpress/internal/infrastructure/logger"
	"chatpress/internal/infrastructure/publish"
	"chatpress/internal/infrastructure/session"
	"chatpress/internal/infrastructure/storage"
	"chatpress/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := session.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize session store")
	}

	tempStorage, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize temp storage")
	}

	messenger := line.NewClient(cfg, log)
	pipeline := image.NewPipeline(cfg, tempStorage, log)
	dispatcher := conversation.NewDispatcher(cfg, pipeline, messenger, log)
	pub := publish.NewLogPublisher(log)
	service := conversation.NewService(store, dispatcher, messenger, tempStorage, pub, log)

	httpServer := httpserver.New(cfg, log, service, store)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
