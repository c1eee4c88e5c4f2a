package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"petalert/app/models"
	"petalert/app/repository"
	"petalert/internal/pkg/gazetteer"
	"petalert/internal/pkg/imageprocessor"
	"petalert/internal/pkg/jobqueue"
	"petalert/internal/pkg/upload"
)

// MaxPhotoBytes is the per-file limit for uploaded photos (10 MB)
const MaxPhotoBytes = 10 * 1024 * 1024

// HandleCreateReport registers a new missing/found pet report from a
// multipart form, stores the attached photos and schedules the notification
// fan-out in the background.
func HandleCreateReport(c *fiber.Ctx) error {
	report := &models.PetReport{}
	if err := fillReportFromForm(c, report); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	if err := report.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("validation failed: %v", err))
	}

	repos := repository.GetGlobalRepositories()

	dup, err := repos.PetReport.ExistsDuplicate(report, 0)
	if err != nil {
		fiberlog.Error(fmt.Sprintf("[Reports] duplicate check failed: %v", err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to store report")
	}
	if dup {
		return errorJSON(c, fiber.StatusConflict, "an identical report already exists for this date")
	}

	photos, err := photosFromForm(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	if err := repos.PetReport.Create(report); err != nil {
		if isDuplicateKey(err) {
			return errorJSON(c, fiber.StatusConflict, "an identical report already exists for this date")
		}
		fiberlog.Error(fmt.Sprintf("[Reports] create failed: %v", err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to store report")
	}

	for i := range photos {
		photos[i].PetReportID = report.ID
		if err := repos.Photo.Create(&photos[i]); err != nil {
			fiberlog.Error(fmt.Sprintf("[Reports] photo store failed for report %d: %v", report.ID, err))
		}
	}

	enqueueNotification(report.ID)

	created, err := repos.PetReport.GetByID(report.ID)
	if err != nil {
		created = report
	}
	return c.Status(fiber.StatusCreated).JSON(reportResponse(created))
}

// HandleUpdateReport updates an existing report. New photos replace stored
// photos that carry the same role; photo IDs listed in photos_delete are
// removed.
func HandleUpdateReport(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid report id")
	}

	repos := repository.GetGlobalRepositories()
	report, err := repos.PetReport.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "report not found")
		}
		fiberlog.Error(fmt.Sprintf("[Reports] load failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load report")
	}

	if err := fillReportFromForm(c, report); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	if err := report.Validate(); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, fmt.Sprintf("validation failed: %v", err))
	}

	dup, err := repos.PetReport.ExistsDuplicate(report, report.ID)
	if err != nil {
		fiberlog.Error(fmt.Sprintf("[Reports] duplicate check failed: %v", err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to update report")
	}
	if dup {
		return errorJSON(c, fiber.StatusConflict, "an identical report already exists for this date")
	}

	// New uploads must be valid before any stored photo is removed
	photos, err := photosFromForm(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	// Drop explicitly removed photos
	for _, raw := range deleteList(c) {
		photoID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			continue
		}
		photo, err := repos.Photo.GetByID(uint(photoID))
		if err != nil || photo.PetReportID != report.ID {
			continue
		}
		if err := repos.Photo.Delete(photo.ID); err != nil {
			fiberlog.Error(fmt.Sprintf("[Reports] photo delete failed for %d: %v", photo.ID, err))
		}
	}

	for i := range photos {
		photos[i].PetReportID = report.ID
		// Same role replaces the stored photo
		if existing, err := repos.Photo.GetByReportAndRole(report.ID, photos[i].Role); err == nil {
			if err := repos.Photo.Delete(existing.ID); err != nil {
				fiberlog.Error(fmt.Sprintf("[Reports] photo replace failed for %d: %v", existing.ID, err))
				continue
			}
		}
		if err := repos.Photo.Create(&photos[i]); err != nil {
			fiberlog.Error(fmt.Sprintf("[Reports] photo store failed for report %d: %v", report.ID, err))
		}
	}

	report.Photos = nil
	if err := repos.PetReport.Update(report); err != nil {
		if isDuplicateKey(err) {
			return errorJSON(c, fiber.StatusConflict, "an identical report already exists for this date")
		}
		fiberlog.Error(fmt.Sprintf("[Reports] update failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to update report")
	}

	// Edited reports go through the notification fan-out again, like new ones
	enqueueNotification(report.ID)

	updated, err := repos.PetReport.GetByID(report.ID)
	if err != nil {
		updated = report
	}
	return c.JSON(reportResponse(updated))
}

// HandleGetReport returns a single report with its photo links
func HandleGetReport(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid report id")
	}

	report, err := repository.GetGlobalRepositories().PetReport.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "report not found")
		}
		fiberlog.Error(fmt.Sprintf("[Reports] load failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load report")
	}
	return c.JSON(reportResponse(report))
}

// HandleDeleteReport removes a report and its photos
func HandleDeleteReport(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid report id")
	}

	repos := repository.GetGlobalRepositories()
	if _, err := repos.PetReport.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "report not found")
		}
		fiberlog.Error(fmt.Sprintf("[Reports] load failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load report")
	}

	if err := repos.PetReport.Delete(id); err != nil {
		fiberlog.Error(fmt.Sprintf("[Reports] delete failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to delete report")
	}
	return c.JSON(fiber.Map{"type": "success", "message": "report deleted"})
}

// HandleResolveReport marks a missing report as resolved. Expects the fields
// resolved_on (dd/mm/yyyy) and status (alive|deceased).
func HandleResolveReport(c *fiber.Ctx) error {
	id, err := reportID(c)
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid report id")
	}

	repos := repository.GetGlobalRepositories()
	report, err := repos.PetReport.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "report not found")
		}
		fiberlog.Error(fmt.Sprintf("[Reports] load failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load report")
	}

	if report.Kind != models.ReportKindMissing {
		return errorJSON(c, fiber.StatusBadRequest, "only missing reports can be resolved")
	}
	if report.IsResolved() {
		return errorJSON(c, fiber.StatusConflict, "report is already resolved")
	}

	status := models.ResolutionStatus(formValue(c, "status"))
	if !status.Valid() {
		return errorJSON(c, fiber.StatusBadRequest, "status must be alive or deceased")
	}

	resolvedOn, err := parseOptionalDate(formValue(c, "resolved_on"))
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	on := time.Now().Truncate(24 * time.Hour)
	if resolvedOn != nil {
		on = *resolvedOn
	}
	if on.Before(report.RegisteredOn) {
		return errorJSON(c, fiber.StatusBadRequest, "resolution date cannot precede the registration date")
	}

	if err := repos.PetReport.Resolve(id, on, string(status)); err != nil {
		fiberlog.Error(fmt.Sprintf("[Reports] resolve failed for %d: %v", id, err))
		return errorJSON(c, fiber.StatusInternalServerError, "failed to resolve report")
	}

	resolved, err := repos.PetReport.GetByID(id)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "failed to load report")
	}
	return c.JSON(reportResponse(resolved))
}

// fillReportFromForm populates a report from the multipart form fields and
// applies the postal-code and found-report normalization rules.
func fillReportFromForm(c *fiber.Ctx, report *models.PetReport) error {
	report.Kind = models.ReportKind(formValue(c, "kind"))
	report.Name = formValue(c, "name")
	report.Species = formValue(c, "species")
	report.OwnerEmail = formValue(c, "owner_email")
	report.OwnerPhone = formValue(c, "owner_phone")
	report.Locality = formValue(c, "locality")
	report.Color = formValue(c, "color")
	report.Sex = models.PetSex(formValue(c, "sex"))
	report.Size = models.PetSize(formValue(c, "size"))

	report.Breed = optionalFormString(c, "breed")
	report.MicrochipID = optionalFormString(c, "microchip_id")
	report.Description = optionalFormString(c, "description")

	age, err := parseOptionalInt(formValue(c, "age"))
	if err != nil {
		return fmt.Errorf("age: %w", err)
	}
	report.Age = age

	weight, err := parseOptionalFloat(formValue(c, "weight"))
	if err != nil {
		return fmt.Errorf("weight: %w", err)
	}
	report.Weight = weight

	code := gazetteer.NormalizePostalCode(formValue(c, "postal_code"))
	if !gazetteer.ValidPostalCode(code) {
		return fmt.Errorf("postal code %q is not a valid 5-digit code", formValue(c, "postal_code"))
	}
	report.PostalCode = code

	report.RegisteredOn = time.Now().Truncate(24 * time.Hour)
	if v := formValue(c, "registered_on"); v != "" {
		parsed, err := parseDate(v)
		if err != nil {
			return fmt.Errorf("registered_on: %w", err)
		}
		report.RegisteredOn = parsed
	}

	// Found animals have no known name or sex
	if report.Kind == models.ReportKindFound {
		report.Name = "found"
		report.Sex = models.PetSexUnknown
	}
	return nil
}

// photosFromForm validates and decodes the uploaded photo files. Roles come
// from the parallel photo_roles values; missing roles get positional names.
func photosFromForm(c *fiber.Ctx) ([]models.Photo, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}

	files := form.File["photos"]
	roles := form.Value["photo_roles"]

	photos := make([]models.Photo, 0, len(files))
	for i, fh := range files {
		if fh.Size > MaxPhotoBytes {
			return nil, fmt.Errorf("photo %s exceeds the %d MB limit", fh.Filename, MaxPhotoBytes/1024/1024)
		}
		data, err := readUpload(fh)
		if err != nil {
			return nil, fmt.Errorf("failed to read photo %s", fh.Filename)
		}

		head := data
		if len(head) > 512 {
			head = head[:512]
		}
		mime, err := upload.ValidateImageBySniff(fh.Filename, head)
		if err != nil {
			return nil, fmt.Errorf("photo %s: %v", fh.Filename, err)
		}

		role := ""
		if i < len(roles) {
			role = roles[i]
		}
		if role == "" {
			role = fmt.Sprintf("photo_%d", i+1)
		}

		photo := models.Photo{
			Role:      role,
			Data:      data,
			MimeType:  mime,
			FileName:  fh.Filename,
			SizeBytes: fh.Size,
		}
		if thumb, err := imageprocessor.Thumbnail(data); err == nil {
			photo.ThumbData = thumb
		} else {
			fiberlog.Warn(fmt.Sprintf("[Reports] thumbnail failed for %s: %v", fh.Filename, err))
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// deleteList returns the photo IDs submitted in photos_delete fields
func deleteList(c *fiber.Ctx) []string {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.Value["photos_delete"]
}

func reportID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id")
	}
	return uint(id), nil
}

// enqueueNotification schedules the fan-out job; failures are logged only,
// registration never fails because of the queue. Declared as a variable so
// tests can observe the scheduling.
var enqueueNotification = func(reportID uint) {
	queue := jobqueue.GetManager().GetQueue()
	if _, err := queue.EnqueueNotifyReportJob(reportID); err != nil {
		fiberlog.Error(fmt.Sprintf("[Reports] failed to enqueue notification for report %d: %v", reportID, err))
	}
}

// isDuplicateKey reports whether err is a unique-constraint violation, either
// as translated by GORM or as the raw MySQL 1062 error.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// reportResponse shapes a report for JSON output, adding photo links
func reportResponse(report *models.PetReport) fiber.Map {
	photos := make([]fiber.Map, 0, len(report.Photos))
	for i := range report.Photos {
		p := &report.Photos[i]
		photos = append(photos, fiber.Map{
			"id":         p.ID,
			"role":       p.Role,
			"mime_type":  p.MimeType,
			"file_name":  p.FileName,
			"size_bytes": p.SizeBytes,
			"url":        p.URL(),
			"thumb_url":  p.ThumbURL(),
		})
	}
	return fiber.Map{
		"type":   "success",
		"report": report,
		"photos": photos,
	}
}
