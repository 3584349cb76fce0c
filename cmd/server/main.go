package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sara-kitchen/api/internal/ai"
	"github.com/sara-kitchen/api/internal/config"
	"github.com/sara-kitchen/api/internal/database"
	"github.com/sara-kitchen/api/internal/media"
	"github.com/sara-kitchen/api/internal/notify"
	"github.com/sara-kitchen/api/internal/router"
	"github.com/sara-kitchen/api/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	queries := database.New(pool)

	hub := ws.NewHub()
	go hub.Run()

	refresher := ws.NewRefresher(hub, queries, 30*time.Second)
	go refresher.Run(ctx)

	mediaStore, err := media.NewS3Store(ctx, cfg.MediaBucket, cfg.MediaRegion, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("Unable to configure media storage: %v", err)
	}

	telegram := notify.NewTelegramClient(cfg.TelegramToken)
	if cfg.TelegramToken == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, order notifications will fail until configured")
	}

	var gemini *ai.GeminiClient
	if cfg.GeminiAPIKey != "" {
		gemini = ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel)
	} else {
		log.Println("GEMINI_API_KEY not set, AI chat is disabled")
	}

	r := router.New(router.Deps{
		Config:    cfg,
		Queries:   queries,
		Pool:      pool,
		Hub:       hub,
		Refresher: refresher,
		Media:     mediaStore,
		Telegram:  telegram,
		Gemini:    gemini,
	})

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
