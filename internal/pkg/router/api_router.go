package router

import (
	"petalert/app/controllers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")
	v1.Get("/ping", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"ping": "pong"})
	})

	v1.Get("/reports", controllers.HandleSearchReports)
	v1.Post("/reports", controllers.HandleCreateReport)
	v1.Get("/reports/:id", controllers.HandleGetReport)
	v1.Put("/reports/:id", controllers.HandleUpdateReport)
	v1.Delete("/reports/:id", controllers.HandleDeleteReport)
	v1.Post("/reports/:id/resolve", controllers.HandleResolveReport)
	v1.Get("/reports/:id/candidates", controllers.HandleGetCandidates)
	v1.Post("/reports/:id/identify-breed", controllers.HandleIdentifyBreed)
	v1.Post("/reports/:missingID/compare/:foundID", controllers.HandleCompareReports)

	v1.Get("/localities/:postalCode", controllers.HandleGetLocalities)

	v1.Get("/jobs/stats", controllers.HandleQueueStats)
	v1.Get("/jobs/:id", controllers.HandleGetJob)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
