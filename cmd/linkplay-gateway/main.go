package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/life-stream-dev/life-stream-go-linkplay/internal/api"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/config"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/database"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/event"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/linkplay"
	"github.com/life-stream-dev/life-stream-go-linkplay/internal/logger"
)

func main() {
	c, err := config.ReadConfig()
	if err != nil {
		logger.FatalF("Error occured while reading config %v", err)
		return
	}
	loggerCallback := logger.Init()
	logger.Debug("Application initializing...")
	cleaner := event.NewCleaner()
	cleaner.Init(loggerCallback)

	users, err := database.ConnectDatabase(c)
	if err != nil {
		logger.FatalF("Error occured while initializing database, details: %v", err)
		_ = cleaner.Clean()
		return
	}

	client := linkplay.NewClientFromConfig(c.LinkPlay, users)
	logger.InfoF("Link play server: %s, unlock length %d", client.Addr(), client.UnlockLength())

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(c.AppPort),
		Handler:           api.SetupRoutes(client),
		ReadHeaderTimeout: 10 * time.Second,
	}
	cleaner.Add(event.CallableFunc(func(ctx context.Context) error {
		logger.Info("Shutting down http server")
		return server.Shutdown(ctx)
	}))

	logger.InfoF("Link play gateway listening on %s", server.Addr)
	if err = server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.FatalF("HTTP server error: %v", err)
		_ = cleaner.Clean()
		return
	}
	<-cleaner.Done()
}
