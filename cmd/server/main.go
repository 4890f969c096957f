package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/todo-tracker/internal/cache"
	"github.com/iliyamo/todo-tracker/internal/config"
	"github.com/iliyamo/todo-tracker/internal/database"
	"github.com/iliyamo/todo-tracker/internal/handler"
	"github.com/iliyamo/todo-tracker/internal/queue"
	"github.com/iliyamo/todo-tracker/internal/repository"
	"github.com/iliyamo/todo-tracker/internal/router"
	queue_publisher "github.com/iliyamo/todo-tracker/internal/service"
)

func main() {
	_ = godotenv.Load() // load .env when present; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis is optional: a nil client disables the cache and every read
	// goes straight to the database.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache disabled")
	}
	cacheCfg := config.LoadCacheConfig()
	store := cache.New(rdb, cacheCfg.Enabled, cacheCfg.TTL)

	users := repository.NewUserRepo(db)
	todos := repository.NewTodoRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users)
	todoHandler := handler.NewTodoHandler(todos, store, queue_publisher.Publisher{}, cfg.StrictGet)

	// Background consumer appending status-change events to the audit
	// log. It reconnects on its own; a missing broker never blocks the
	// HTTP server.
	go func() {
		if err := queue.StartStatusConsumer(); err != nil {
			log.Printf("status-consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, authHandler, todoHandler, users, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
