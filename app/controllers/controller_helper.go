package controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// dateLayouts are the accepted submission formats for date fields, tried in
// order. Day-first comes first because that is what the public forms send.
var dateLayouts = []string{"02/01/2006", "2006-01-02"}

// errorJSON renders the common error body shape
func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"type":    "error",
		"message": message,
	})
}

// formValue returns a trimmed form field
func formValue(c *fiber.Ctx, key string) string {
	return strings.TrimSpace(c.FormValue(key))
}

// parseDate parses a date field in dd/mm/yyyy or ISO format
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected dd/mm/yyyy", value)
}

// parseOptionalDate parses a date field, returning nil for an empty value
func parseOptionalDate(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseOptionalInt parses an integer field, returning nil for an empty value
func parseOptionalInt(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", value)
	}
	return &n, nil
}

// parseOptionalFloat parses a decimal field, accepting both comma and dot as
// decimal separator, returning nil for an empty value
func parseOptionalFloat(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", value)
	}
	return &f, nil
}

// optionalFormString returns nil for empty fields, a pointer otherwise
func optionalFormString(c *fiber.Ctx, key string) *string {
	v := formValue(c, key)
	if v == "" {
		return nil
	}
	return &v
}
