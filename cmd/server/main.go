package main // Entry point package

import (
	"log"  // Logging library
	"time" // Session TTL arithmetic

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/tracewell/venuetrace/internal/config"
	"github.com/tracewell/venuetrace/internal/database"
	"github.com/tracewell/venuetrace/internal/handler"
	"github.com/tracewell/venuetrace/internal/middleware"
	"github.com/tracewell/venuetrace/internal/queue"
	"github.com/tracewell/venuetrace/internal/repository"
	"github.com/tracewell/venuetrace/internal/router"
	"github.com/tracewell/venuetrace/internal/session"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis backs sessions and rate-limit counters; without it the service
	// degrades to single-node in-process stores.
	rdb := config.NewRedisClient()
	var sessionStore session.Store
	var counters middleware.CounterStore
	if rdb != nil {
		sessionStore = session.NewRedisStore(rdb)
		counters = middleware.NewRedisCounterStore(rdb)
	} else {
		log.Println("redis unavailable; using in-process session and rate-limit stores")
		sessionStore = session.NewMemoryStore()
		counters = middleware.NewMemoryCounterStore()
	}

	sessions := session.NewManager(sessionStore, time.Duration(cfg.SessionTTLHours)*time.Hour, cfg.Prod())

	users := repository.NewUserRepo(db)
	checkIns := repository.NewCheckInRepo(db)
	markers := repository.NewMarkerRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, sessions)
	checkInHandler := handler.NewCheckInHandler(cfg, checkIns)
	markerHandler := handler.NewMarkerHandler(cfg, markers)

	e := echo.New()
	router.Register(e, rlCfg, counters, sessions, authHandler, checkInHandler, markerHandler)

	// Background audit trail for recorded check-ins.
	go func() {
		if err := queue.StartCheckInConsumer(); err != nil {
			log.Printf("checkin consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err)
	}
}
