package controllers

import (
	"github.com/gofiber/fiber/v2"

	"petalert/internal/pkg/gazetteer"
)

// HandleGetLocalities returns the locality names known for a postal code,
// used to populate the locality picker on the report form.
func HandleGetLocalities(c *fiber.Ctx) error {
	code := gazetteer.NormalizePostalCode(c.Params("postalCode"))
	if !gazetteer.ValidPostalCode(code) {
		return errorJSON(c, fiber.StatusBadRequest, "postal code must be a 5-digit code")
	}

	names := gazetteer.Get().Localities(code)
	return c.JSON(fiber.Map{
		"type":        "success",
		"postal_code": code,
		"localities":  names,
	})
}
