package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"
	"github.com/zecobranca/cobranca-bot/internal/boot"
	"github.com/zecobranca/cobranca-bot/internal/chatpro"
	"github.com/zecobranca/cobranca-bot/internal/handlers"
	"github.com/zecobranca/cobranca-bot/internal/service/responder"
	"github.com/zecobranca/cobranca-bot/internal/store"
)

type ConversationStore interface {
	responder.ConversationStore
	Close() error
}

func newStore(config *boot.Config) (ConversationStore, error) {
	switch config.ConversationStore {
	case "sqlite":
		return store.NewSqliteStore()
	case "memory":
		return store.NewMemoryStore(), nil
	}
	return nil, errors.New("unknown conversation store: " + config.ConversationStore)
}

func main() {
	config, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}

	conversations, err := newStore(config)
	if err != nil {
		log.Fatalf("creating conversation store: %+v", err)
	}
	defer conversations.Close()

	sender := chatpro.New(config.ChatPro.APIURL, config.ChatPro.APIToken)
	processor := responder.New(conversations, sender, config.ChatPro.InstanceID)

	server := echo.New()
	server.Use(middleware.BodyLimit("1M"))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(echoprometheus.NewMiddleware("cobranca_bot"))
	server.Use(middleware.Recover())

	server.Logger.SetLevel(log.INFO)
	if config.IsDevelopment() {
		server.Logger.SetLevel(log.DEBUG)
	}

	server.POST("/webhook", handlers.Webhook(processor))
	server.GET("/health", handlers.Health())

	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + config.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + config.Server.Port); err != nil && err != http.ErrServerClosed {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
