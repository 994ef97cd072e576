package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	pool    *pgxpool.Pool
	rdb     *redis.Client
	startAt time.Time
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		rdb:     rdb,
		startAt: time.Now(),
	}
}

// Live handles GET /health/live, the liveness probe.
func (h *HealthHandler) Live(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready handles GET /health/ready, the readiness probe with dependency checks.
// Redis being down degrades but does not fail readiness: the pipeline only
// loses its read cache.
func (h *HealthHandler) Ready(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
	defer cancel()

	checks := make(fiber.Map)
	overallStatus := "healthy"
	httpStatus := fiber.StatusOK

	dbCheck := checkDB(ctx, h.pool)
	checks["database"] = dbCheck
	if dbCheck["status"] != "up" {
		overallStatus = "unhealthy"
		httpStatus = fiber.StatusServiceUnavailable
	}

	redisCheck := checkRedis(ctx, h.rdb)
	checks["redis"] = redisCheck
	if redisCheck["status"] != "up" && overallStatus == "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":         overallStatus,
		"checks":         checks,
		"uptime_seconds": int(time.Since(h.startAt).Seconds()),
	})
}

func checkDB(ctx context.Context, pool *pgxpool.Pool) fiber.Map {
	if pool == nil {
		return fiber.Map{"status": "down", "error": "no pool"}
	}
	start := time.Now()
	if err := pool.Ping(ctx); err != nil {
		return fiber.Map{"status": "down", "error": err.Error()}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": time.Since(start).Milliseconds(),
	}
}

func checkRedis(ctx context.Context, rdb *redis.Client) fiber.Map {
	if rdb == nil {
		return fiber.Map{"status": "disabled"}
	}
	start := time.Now()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fiber.Map{"status": "down", "error": err.Error()}
	}
	return fiber.Map{
		"status":     "up",
		"latency_ms": time.Since(start).Milliseconds(),
	}
}
