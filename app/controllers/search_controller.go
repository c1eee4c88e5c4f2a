package controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"

	"petalert/app/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// HandleSearchReports lists reports filtered by any combination of the query
// parameters kind, name, species, breed, color, sex, size, locality,
// postal_code, owner_email, resolved, registered_from and registered_to,
// with page/limit pagination.
func HandleSearchReports(c *fiber.Ctx) error {
	filters := repository.ReportFilters{
		Kind:       strings.TrimSpace(c.Query("kind")),
		Name:       strings.TrimSpace(c.Query("name")),
		Species:    strings.TrimSpace(c.Query("species")),
		Breed:      strings.TrimSpace(c.Query("breed")),
		Color:      strings.TrimSpace(c.Query("color")),
		Sex:        strings.TrimSpace(c.Query("sex")),
		Size:       strings.TrimSpace(c.Query("size")),
		Locality:   strings.TrimSpace(c.Query("locality")),
		PostalCode: strings.TrimSpace(c.Query("postal_code")),
		OwnerEmail: strings.TrimSpace(c.Query("owner_email")),
	}

	if v := strings.TrimSpace(c.Query("resolved")); v != "" {
		resolved, err := strconv.ParseBool(v)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "resolved must be true or false")
		}
		filters.Resolved = &resolved
	}

	var err error
	filters.RegisteredFrom, err = queryDate(c, "registered_from")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}
	filters.RegisteredTo, err = queryDate(c, "registered_to")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, err.Error())
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	repos := repository.GetGlobalRepositories()
	total, err := repos.PetReport.Count(filters)
	if err != nil {
		fiberlog.Error(fmt.Sprintf("[Reports] count failed: %v", err))
		return errorJSON(c, fiber.StatusInternalServerError, "search failed")
	}

	reports, err := repos.PetReport.Search(filters, (page-1)*limit, limit)
	if err != nil {
		fiberlog.Error(fmt.Sprintf("[Reports] search failed: %v", err))
		return errorJSON(c, fiber.StatusInternalServerError, "search failed")
	}

	items := make([]fiber.Map, 0, len(reports))
	for i := range reports {
		items = append(items, reportResponse(&reports[i]))
	}

	return c.JSON(fiber.Map{
		"type":    "success",
		"total":   total,
		"page":    page,
		"limit":   limit,
		"reports": items,
	})
}

func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	t, err := parseDate(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", key, err)
	}
	return &t, nil
}
