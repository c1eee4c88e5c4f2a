package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"petalert/app/models"
	"petalert/app/repository"
	"petalert/internal/pkg/vision"
)

// HandleGetCandidates lists the found reports that could match an unresolved
// missing report: same species, registered on or after the missing date, with
// at least one photo, oldest first.
func HandleGetCandidates(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid report id")
	}

	repos := repository.GetGlobalRepositories()
	missing, err := repos.PetReport.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "report not found")
		}
		fiberlog.Error(fmt.Sprintf("[Vision] load failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load report")
	}

	if missing.Kind != models.ReportKindMissing {
		return errorJSON(c, fiber.StatusBadRequest, "candidates are only available for missing reports")
	}
	if missing.IsResolved() {
		return errorJSON(c, fiber.StatusBadRequest, "report is already resolved")
	}
	if len(missing.Photos) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "report has no photos to compare against")
	}

	candidates, err := repos.PetReport.FoundCandidatesFor(missing)
	if err != nil {
		fiberlog.Error(fmt.Sprintf("[Vision] candidate lookup failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusInternalServerError, "candidate lookup failed")
	}

	items := make([]fiber.Map, 0, len(candidates))
	for i := range candidates {
		items = append(items, reportResponse(&candidates[i]))
	}
	return c.JSON(fiber.Map{
		"type":       "success",
		"report_id":  missing.ID,
		"candidates": items,
	})
}

// HandleIdentifyBreed asks the vision model to guess the breed from the
// report's stored photos.
func HandleIdentifyBreed(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid report id")
	}

	report, err := repository.GetGlobalRepositories().PetReport.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "report not found")
		}
		fiberlog.Error(fmt.Sprintf("[Vision] load failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load report")
	}
	if len(report.Photos) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "report has no photos")
	}

	client, err := vision.NewClientFromEnv(c.Context())
	if err != nil {
		fiberlog.Warn(fmt.Sprintf("[Vision] client unavailable: %v", err))
		return errorJSON(c, fiber.StatusServiceUnavailable, "vision service is not configured")
	}

	answer, err := client.IdentifyBreed(c.Context(), report.Species, visionImages(report.Photos))
	if err != nil {
		fiberlog.Error(fmt.Sprintf("[Vision] breed identification failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusBadGateway, "vision service request failed")
	}

	return c.JSON(fiber.Map{
		"type":      "success",
		"report_id": report.ID,
		"species":   report.Species,
		"answer":    answer,
	})
}

// HandleCompareReports asks the vision model whether the animal in a missing
// report's photos looks like the one in a found report's photos.
func HandleCompareReports(c *fiber.Ctx) error {
	missingID, err := strconv.ParseUint(c.Params("missingID"), 10, 32)
	if err != nil || missingID == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "invalid report id")
	}
	foundID, err := strconv.ParseUint(c.Params("foundID"), 10, 32)
	if err != nil || foundID == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "invalid report id")
	}

	repos := repository.GetGlobalRepositories()
	missing, err := repos.PetReport.GetByID(uint(missingID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "missing report not found")
		}
		fiberlog.Error(fmt.Sprintf("[Vision] load failed for %d: %v", missingID, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load report")
	}
	found, err := repos.PetReport.GetByID(uint(foundID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "found report not found")
		}
		fiberlog.Error(fmt.Sprintf("[Vision] load failed for %d: %v", foundID, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load report")
	}

	if missing.Kind != models.ReportKindMissing || found.Kind != models.ReportKindFound {
		return errorJSON(c, fiber.StatusBadRequest, "comparison needs one missing and one found report")
	}

	first := missing.Photos
	second := found.Photos
	// Optional per-role comparison narrows both sides to one photo
	if role := formValue(c, "role"); role != "" {
		first = photosWithRole(first, role)
		second = photosWithRole(second, role)
	}
	if len(first) == 0 || len(second) == 0 {
		return errorJSON(c, fiber.StatusBadRequest, "both reports need photos to compare")
	}

	client, err := vision.NewClientFromEnv(c.Context())
	if err != nil {
		fiberlog.Warn(fmt.Sprintf("[Vision] client unavailable: %v", err))
		return errorJSON(c, fiber.StatusServiceUnavailable, "vision service is not configured")
	}

	answer, err := client.ComparePhotos(c.Context(), visionImages(first), visionImages(second))
	if err != nil {
		fiberlog.Error(fmt.Sprintf("[Vision] comparison failed for %d/%d: %v", missingID, foundID, err))
		return errorJSON(c, fiber.StatusBadGateway, "vision service request failed")
	}

	return c.JSON(fiber.Map{
		"type":       "success",
		"missing_id": missing.ID,
		"found_id":   found.ID,
		"answer":     answer,
	})
}

func visionImages(photos []models.Photo) []vision.Image {
	images := make([]vision.Image, 0, len(photos))
	for _, p := range photos {
		if len(p.Data) == 0 {
			continue
		}
		images = append(images, vision.Image{MimeType: p.MimeType, Data: p.Data})
	}
	return images
}

func photosWithRole(photos []models.Photo, role string) []models.Photo {
	out := make([]models.Photo, 0, 1)
	for _, p := range photos {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}
