package router

import (
	"petalert/app/controllers"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Photo bytes are served outside the /api prefix so they can be embedded
	// directly in pages and mails
	app.Get("/photos/:id", controllers.HandleGetPhoto)
	app.Get("/photos/:id/thumb", controllers.HandleGetPhotoThumb)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
