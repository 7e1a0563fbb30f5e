package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/tableside/floor-manager/internal/client"
	"github.com/tableside/floor-manager/internal/config"
	"github.com/tableside/floor-manager/internal/database"
	"github.com/tableside/floor-manager/internal/geometry"
	"github.com/tableside/floor-manager/internal/handler"
	"github.com/tableside/floor-manager/internal/queue"
	"github.com/tableside/floor-manager/internal/repository"
	"github.com/tableside/floor-manager/internal/router"
	queue_publisher "github.com/tableside/floor-manager/internal/service"
	"github.com/tableside/floor-manager/internal/wizard"
)

func main() {
	// Load a local .env when present; real deployments set the
	// environment directly and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load()

	// The audit database is optional infrastructure: without it the
	// floor still runs, only the shift audit trail is unavailable.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Printf("audit database unavailable, continuing without audit trail: %v", err)
		db = nil
	}

	// Redis carries the wizard sessions, the rate limiter and the
	// audit response cache.  Without it sessions fall back to an
	// in-process store and the other two switch off.
	rdb := config.NewRedisClient()
	var sessions wizard.Store
	if rdb != nil {
		sessions = wizard.NewRedisStore(rdb, "wizard", time.Duration(cfg.SessionTTLMin)*time.Minute)
	} else {
		log.Println("redis unavailable, using in-process wizard sessions")
		sessions = wizard.NewMemoryStore()
	}

	upstream := client.New(cfg.UpstreamBaseURL, cfg.UpstreamToken, nil)
	floorHandler := handler.NewFloorHandler(upstream, sessions, queue_publisher.PublishFloorCommand, geometry.SizeMode(cfg.DefaultSizeMode))

	var auditRepo *repository.AuditRepo
	if db != nil {
		auditRepo = repository.NewAuditRepo(db)
	}
	auditHandler := handler.NewAuditHandler(auditRepo)

	// The consumer drains published command events into the audit
	// table.  It reconnects on its own; a dead broker only delays
	// audit rows.
	go func() {
		if err := queue.StartCommandConsumer(db); err != nil {
			log.Printf("command consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterFloor(e, floorHandler, auditHandler, cfg.JWTSecret, config.LoadRateLimitConfig(), config.LoadCacheConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
