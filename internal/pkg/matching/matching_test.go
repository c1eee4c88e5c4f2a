package matching

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"petalert/app/models"
	"petalert/internal/pkg/gazetteer"
)

// stubResolver resolves by postal code only, like a tiny gazetteer
type stubResolver map[string]gazetteer.Coordinate

func (s stubResolver) Resolve(postalCode, locality string) (gazetteer.Coordinate, bool) {
	c, ok := s[postalCode]
	return c, ok
}

func day(offset int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func foundReport(on time.Time) *models.PetReport {
	return &models.PetReport{
		Kind:         models.ReportKindFound,
		OwnerEmail:   "finder@example.com",
		PostalCode:   "28001",
		Locality:     "madrid",
		RegisteredOn: on,
	}
}

func TestAllowedRadiusKm(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name     string
		missing  time.Time
		found    time.Time
		expected int
	}{
		{"same day counts as one", day(0), day(0), 20},
		{"one day", day(0), day(1), 20},
		{"three days", day(0), day(3), 60},
		{"five days reaches the cap", day(0), day(5), 100},
		{"cap holds for long gaps", day(0), day(30), 100},
		{"found before missing counts as one day", day(5), day(0), 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AllowedRadiusKm(tt.missing, tt.found, opts))
		})
	}
}

func TestRecipientEmailsMissingReportNotifiesOwnerOnly(t *testing.T) {
	report := &models.PetReport{
		Kind:         models.ReportKindMissing,
		OwnerEmail:   "owner@example.com",
		PostalCode:   "28001",
		Locality:     "madrid",
		RegisteredOn: day(0),
	}
	prior := []Candidate{{OwnerEmail: "other@example.com", PostalCode: "28001", Locality: "madrid", RegisteredOn: day(0)}}

	got := RecipientEmails(report, prior, stubResolver{}, DefaultOptions())
	assert.Equal(t, []string{"owner@example.com"}, got)
}

func TestRecipientEmailsDistanceFilter(t *testing.T) {
	// One degree of latitude is ~111 km. 28001 is the found location;
	// 28010 sits ~18 km away, 28020 ~33 km away.
	resolver := stubResolver{
		"28001": {Lon: 0, Lat: 40.0},
		"28010": {Lon: 0, Lat: 40.162},
		"28020": {Lon: 0, Lat: 40.3},
	}

	report := foundReport(day(0))
	prior := []Candidate{
		{OwnerEmail: "near@example.com", PostalCode: "28010", Locality: "near", RegisteredOn: day(0)},
		{OwnerEmail: "far@example.com", PostalCode: "28020", Locality: "far", RegisteredOn: day(0)},
	}

	got := RecipientEmails(report, prior, resolver, DefaultOptions())
	assert.Equal(t, []string{"finder@example.com", "near@example.com"}, got)
}

func TestRecipientEmailsRadiusGrowsWithElapsedDays(t *testing.T) {
	resolver := stubResolver{
		"28001": {Lon: 0, Lat: 40.0},
		"28020": {Lon: 0, Lat: 40.3}, // ~33 km
	}

	report := foundReport(day(5))
	prior := []Candidate{
		{OwnerEmail: "patient@example.com", PostalCode: "28020", Locality: "far", RegisteredOn: day(0)},
	}

	// Five elapsed days allow 100 km, so 33 km is now within reach
	got := RecipientEmails(report, prior, resolver, DefaultOptions())
	assert.Contains(t, got, "patient@example.com")
}

func TestRecipientEmailsFailOpenOnResolveMiss(t *testing.T) {
	resolver := stubResolver{"28001": {Lon: 0, Lat: 40.0}}
	prior := []Candidate{
		{OwnerEmail: "unknown@example.com", PostalCode: "99999", Locality: "nowhere", RegisteredOn: day(0)},
	}

	open := DefaultOptions()
	got := RecipientEmails(foundReport(day(0)), prior, resolver, open)
	assert.Contains(t, got, "unknown@example.com")

	closed := DefaultOptions()
	closed.FailOpen = false
	got = RecipientEmails(foundReport(day(0)), prior, resolver, closed)
	assert.NotContains(t, got, "unknown@example.com")
}

func TestRecipientEmailsIncompleteLocationSkipsFilter(t *testing.T) {
	resolver := stubResolver{"28001": {Lon: 0, Lat: 40.0}}
	prior := []Candidate{
		{OwnerEmail: "nolocality@example.com", PostalCode: "28020", Locality: "", RegisteredOn: day(0)},
	}

	got := RecipientEmails(foundReport(day(0)), prior, resolver, DefaultOptions())
	assert.Contains(t, got, "nolocality@example.com")
}

func TestRecipientEmailsDedupeKeepsFirstSeenOrder(t *testing.T) {
	resolver := stubResolver{
		"28001": {Lon: 0, Lat: 40.0},
		"28010": {Lon: 0, Lat: 40.05},
	}
	prior := []Candidate{
		{OwnerEmail: "dup@example.com", PostalCode: "28010", Locality: "near", RegisteredOn: day(0)},
		{OwnerEmail: "dup@example.com", PostalCode: "28010", Locality: "near", RegisteredOn: day(0)},
		{OwnerEmail: "", PostalCode: "28010", Locality: "near", RegisteredOn: day(0)},
		{OwnerEmail: "finder@example.com", PostalCode: "28010", Locality: "near", RegisteredOn: day(0)},
		{OwnerEmail: "second@example.com", PostalCode: "28010", Locality: "near", RegisteredOn: day(0)},
	}

	got := RecipientEmails(foundReport(day(0)), prior, resolver, DefaultOptions())
	assert.Equal(t, []string{"finder@example.com", "dup@example.com", "second@example.com"}, got)
}

func TestRecipientEmailsPintoLasRozas(t *testing.T) {
	// Pinto and Las Rozas are about 18 km apart here. Same-day filing allows
	// 20 km, so the owner is notified; five elapsed days allow 100 km.
	resolver := stubResolver{
		"28320": {Lon: -3.6996, Lat: 40.2419},
		"28231": {Lon: -3.6996, Lat: 40.4037},
	}
	prior := []Candidate{
		{OwnerEmail: "pinto-owner@example.com", PostalCode: "28320", Locality: "pinto", RegisteredOn: day(0)},
	}

	report := foundReport(day(0))
	report.PostalCode = "28231"
	report.Locality = "las rozas"
	assert.Contains(t, RecipientEmails(report, prior, resolver, DefaultOptions()), "pinto-owner@example.com")

	report = foundReport(day(5))
	report.PostalCode = "28231"
	report.Locality = "las rozas"
	assert.Contains(t, RecipientEmails(report, prior, resolver, DefaultOptions()), "pinto-owner@example.com")
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("MATCH_FAIL_OPEN", "false")
	assert.False(t, OptionsFromEnv().FailOpen)

	t.Setenv("MATCH_FAIL_OPEN", "true")
	assert.True(t, OptionsFromEnv().FailOpen)
}
