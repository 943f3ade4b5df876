//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"chatpress/internal/config"
	"chatpress/internal/domain/conversation"
	"chatpress/internal/domain/image"
	"chatpress/internal/domain/messaging"
	"chatpress/internal/domain/publisher"
	"chatpress/internal/infrastructure/line"
	"chatpress/internal/infrastructure/logger"
	"chatpress/internal/infrastructure/publish"
	"chatpress/internal/infrastructure/session"
	"chatpress/internal/infrastructure/storage"
	"chatpress/internal/interfaces/httpserver"
)

var conversationSet = wire.NewSet(
	session.New,
	storage.New,
	line.NewClient,
	wire.Bind(new(messaging.Client), new(*line.Client)),
	image.NewPipeline,
	wire.Bind(new(conversation.Processor), new(*image.Pipeline)),
	conversation.NewDispatcher,
	wire.Bind(new(conversation.Dispatching), new(*conversation.Dispatcher)),
	wire.Bind(new(conversation.MediaDownloader), new(*line.Client)),
	publish.NewLogPublisher,
	wire.Bind(new(publisher.Publisher), new(*publish.LogPublisher)),
	conversation.NewService,
)

// BuildApplication assembles the service with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		conversationSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}
