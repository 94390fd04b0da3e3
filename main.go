package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatrelay/internal/config"
	"chatrelay/internal/history"
	"chatrelay/internal/http/http_server"
	"chatrelay/internal/redis/redis_client"
	"chatrelay/internal/services/chat"
	"chatrelay/internal/ws"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var redisClient *redis.Client
	var chatService chat.IChatService

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully")

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis-backed history store
	redisClient, err = redis_client.NewRedisClient(cfg.RedisURL)
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	store := history.NewRedisStore(redisClient)

	// 4. Chat service: message persistence + history queries
	chatService = chat.NewChatService(store, time.Duration(cfg.HistoryTTLSeconds)*time.Second)

	// 5. Connection registry, room hub, broadcast relay
	registry := ws.NewRegistry()
	hub := ws.NewHub()
	relay := ws.NewRelay(hub, chatService)

	// 6. Initialize the WS server
	wsSrv := ws.NewWsServer(registry, hub, relay)

	// 7. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, chatService)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
