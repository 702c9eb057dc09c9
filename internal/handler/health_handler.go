package handler

import (
	"github.com/gofiber/fiber/v2"
)

// ReadinessProbe reports whether the orchestrator is accepting work.
type ReadinessProbe func() bool

func RegisterHealthRoutes(app fiber.Router, ready ReadinessProbe) {
	app.Get("/livez", LivezHandler())
	app.Get("/readyz", ReadyzHandler(ready))
}

func LivezHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	}
}

func ReadyzHandler(ready ReadinessProbe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		orchestratorStatus := "ok"
		status := "ready"
		statusCode := fiber.StatusOK
		if ready == nil || !ready() {
			orchestratorStatus = "down"
			status = "not_ready"
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"checks": fiber.Map{
				"orchestrator": orchestratorStatus,
			},
		})
	}
}
