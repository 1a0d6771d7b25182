package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker is implemented by the optional backing services (snapshot
// cache, event publisher).
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// RegisterRoutes registers all HTTP routes on the Fiber app. Nil checkers are
// skipped.
func RegisterRoutes(app *fiber.App, markets *MarketsHandler, views *ViewsHandler, checks map[string]HealthChecker) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/health", func(c *fiber.Ctx) error {
		results := map[string]string{}
		status := "ok"
		code := fiber.StatusOK

		healthCtx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		for name, hc := range checks {
			if hc == nil {
				continue
			}
			if err := hc.HealthCheck(healthCtx); err != nil {
				results[name] = err.Error()
				status = "degraded"
				code = fiber.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		body := fiber.Map{
			"status": status,
			"checks": results,
		}
		// refresh state is informational and never degrades health
		if views != nil {
			if st := views.state.Current(); st != nil {
				info := fiber.Map{"updatedAt": st.UpdatedAt}
				if st.Snapshot != nil {
					info["snapshotId"] = st.Snapshot.ID.String()
					info["markets"] = st.Snapshot.Len()
				}
				if st.Err != nil {
					info["lastError"] = st.Err.Error()
				}
				body["refresh"] = info
			}
		}
		return c.Status(code).JSON(body)
	})

	api := app.Group("/api")
	api.Get("/markets", markets.ListMarkets)
	if views != nil {
		api.Get("/views/:view", views.GetView)
	}
}
