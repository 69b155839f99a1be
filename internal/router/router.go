package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/munivial/flota-api/internal/config"
	"github.com/munivial/flota-api/internal/handler"
	"github.com/munivial/flota-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuditHandler     *handler.AuditHandler
	ReportHandler    *handler.ReportHandler
	RentalHandler    *handler.RentalReportHandler
	MachineryHandler *handler.MachineryHandler
	OperatorHandler  *handler.OperatorHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.AuditHandler != nil {
		deps.AuditHandler.Register(api.Group("/auditoria"))
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(api.Group("/reportes"))
	}
	if deps.RentalHandler != nil {
		deps.RentalHandler.Register(api.Group("/reportes-alquiler"))
	}
	if deps.MachineryHandler != nil {
		deps.MachineryHandler.Register(api.Group("/maquinaria"))
	}
	if deps.OperatorHandler != nil {
		deps.OperatorHandler.Register(api.Group("/operadores"))
	}

	app.Get("/metrics", observability.MetricsHandler())
}
