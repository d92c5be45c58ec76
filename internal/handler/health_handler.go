package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Polyratings/polyratings-api/internal/config"
	"github.com/Polyratings/polyratings-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Store       string    `json:"store"`
}

// HealthCheck returns a handler that reports application and store health.
func HealthCheck(cfg config.Config, redisClient *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		storeStatus := "ok"
		if redisClient != nil {
			if err := redisClient.Ping(c.Context()).Err(); err != nil {
				storeStatus = "unreachable"
			}
		}

		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Store:       storeStatus,
		}

		if storeStatus != "ok" {
			payload.Status = "degraded"
			return utils.SendSuccessWithStatus(c, fiber.StatusServiceUnavailable, "store unreachable", payload)
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
