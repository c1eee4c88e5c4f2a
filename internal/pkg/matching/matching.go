// Package matching decides which prior missing reports should be notified
// when a found report is filed: a day-count radius heuristic gated by
// gazetteer lookups and great-circle distance.
package matching

import (
	"time"

	"petalert/app/models"
	"petalert/internal/pkg/env"
	"petalert/internal/pkg/gazetteer"
	"petalert/internal/pkg/geo"
)

const (
	// MaxRadiusKm caps the search radius regardless of elapsed time.
	MaxRadiusKm = 100
	// KmPerDay is the assumed plausible travel distance per elapsed day.
	KmPerDay = 20
)

// Resolver maps a (postal code, locality) pair to a coordinate.
// *gazetteer.Gazetteer satisfies it.
type Resolver interface {
	Resolve(postalCode, locality string) (gazetteer.Coordinate, bool)
}

// Options tunes candidate selection. FailOpen preserves the historical
// behavior of including a candidate whenever geocoding cannot place one of
// the two reports; turning it off excludes such candidates instead.
type Options struct {
	MaxRadiusKm int
	KmPerDay    int
	FailOpen    bool
}

func DefaultOptions() Options {
	return Options{MaxRadiusKm: MaxRadiusKm, KmPerDay: KmPerDay, FailOpen: true}
}

// OptionsFromEnv returns the defaults with the fail-open policy taken from
// MATCH_FAIL_OPEN (default "true").
func OptionsFromEnv() Options {
	opts := DefaultOptions()
	if env.GetEnv("MATCH_FAIL_OPEN", "true") == "false" {
		opts.FailOpen = false
	}
	return opts
}

// AllowedRadiusKm converts the days elapsed between a missing report's filing
// date and a found report's filing date into a search radius in km. The
// radius grows KmPerDay per elapsed day, never below one day's worth and
// never above MaxRadiusKm.
func AllowedRadiusKm(missingOn, foundOn time.Time, opts Options) int {
	days := int(foundOn.Sub(missingOn).Hours() / 24)
	if days < 0 {
		days = 0
	}
	if days < 1 {
		days = 1
	}
	radius := days * opts.KmPerDay
	if radius > opts.MaxRadiusKm {
		radius = opts.MaxRadiusKm
	}
	return radius
}

// Candidate is the slice of an unresolved missing report needed for the
// distance filter.
type Candidate struct {
	OwnerEmail   string
	PostalCode   string
	Locality     string
	RegisteredOn time.Time
}

// RecipientEmails produces the ordered, deduplicated list of addresses to
// notify for a freshly saved report. The report's own owner always comes
// first. For found reports every prior candidate survives unless both sides
// geocode successfully and the distance between them exceeds the allowed
// radius; when a lookup fails the candidate's fate follows opts.FailOpen.
// Deduplication is by exact string match, first-seen order.
func RecipientEmails(report *models.PetReport, prior []Candidate, resolver Resolver, opts Options) []string {
	var recipients []string
	seen := make(map[string]struct{})

	add := func(email string) {
		if email == "" {
			return
		}
		if _, dup := seen[email]; dup {
			return
		}
		seen[email] = struct{}{}
		recipients = append(recipients, email)
	}

	add(report.OwnerEmail)

	if report.Kind != models.ReportKindFound {
		return recipients
	}

	foundCode := report.PostalCode
	foundLocality := report.Locality

	for _, cand := range prior {
		if cand.OwnerEmail == "" {
			continue
		}
		if _, dup := seen[cand.OwnerEmail]; dup {
			continue
		}

		include := true
		if !report.RegisteredOn.IsZero() && !cand.RegisteredOn.IsZero() &&
			foundCode != "" && foundLocality != "" &&
			cand.PostalCode != "" && cand.Locality != "" {
			radius := AllowedRadiusKm(cand.RegisteredOn, report.RegisteredOn, opts)
			include = withinRadius(resolver, foundCode, foundLocality, cand.PostalCode, cand.Locality, radius, opts.FailOpen)
		}

		if include {
			add(cand.OwnerEmail)
		}
	}

	return recipients
}

func withinRadius(resolver Resolver, code1, loc1, code2, loc2 string, radiusKm int, failOpen bool) bool {
	if resolver == nil {
		return failOpen
	}
	p1, ok := resolver.Resolve(code1, loc1)
	if !ok {
		return failOpen
	}
	p2, ok := resolver.Resolve(code2, loc2)
	if !ok {
		return failOpen
	}
	return geo.DistanceKm(p1.Lon, p1.Lat, p2.Lon, p2.Lat) <= float64(radiusKm)
}
