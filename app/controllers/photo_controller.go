package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"petalert/app/repository"
)

// HandleGetPhoto serves the stored photo bytes with the original mime type
func HandleGetPhoto(c *fiber.Ctx) error {
	return servePhoto(c, false)
}

// HandleGetPhotoThumb serves the small JPEG preview; falls back to the full
// image when no thumbnail could be generated at upload time.
func HandleGetPhotoThumb(c *fiber.Ctx) error {
	return servePhoto(c, true)
}

func servePhoto(c *fiber.Ctx, thumb bool) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "invalid photo id")
	}

	photo, err := repository.GetGlobalRepositories().Photo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "photo not found")
		}
		fiberlog.Error(fmt.Sprintf("[Photos] load failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load photo")
	}

	data := photo.Data
	mime := photo.MimeType
	if thumb && len(photo.ThumbData) > 0 {
		data = photo.ThumbData
		mime = "image/jpeg"
	}
	if mime == "" {
		mime = "application/octet-stream"
	}

	c.Set(fiber.HeaderContentType, mime)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}
