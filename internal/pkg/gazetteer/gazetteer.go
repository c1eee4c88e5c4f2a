// Package gazetteer resolves (postal code, locality) pairs to coordinates
// using a static tab-delimited reference file in the GeoNames postal-code
// layout: country, postal code, place name, ..., latitude (col 9),
// longitude (col 10), accuracy (col 11).
package gazetteer

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"petalert/internal/pkg/env"
)

// Coordinate is a (longitude, latitude) pair in degrees.
type Coordinate struct {
	Lon float64
	Lat float64
}

type entry struct {
	Place    string
	Lat      float64
	Lon      float64
	Accuracy int
}

// Gazetteer holds the reference table indexed by normalized postal code.
type Gazetteer struct {
	byCode map[string][]entry
}

// Load reads the reference file. Blank lines, comment lines and rows with
// missing or non-numeric coordinate columns are skipped.
func Load(path string) (*Gazetteer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g := &Gazetteer{byCode: make(map[string][]entry)}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		lat, err := strconv.ParseFloat(cols[9], 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(cols[10], 64)
		if err != nil {
			continue
		}
		acc, err := strconv.Atoi(cols[11])
		if err != nil {
			continue
		}
		code := strings.TrimSpace(cols[1])
		g.byCode[code] = append(g.byCode[code], entry{
			Place:    cols[2],
			Lat:      lat,
			Lon:      lon,
			Accuracy: acc,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// Resolve maps a postal code and an optional locality name to a coordinate.
// Locality matching prefers an exact accent/case-insensitive match, then a
// bidirectional substring match, then falls back to every row for the code.
// Among the surviving rows the one with the highest accuracy wins. An unknown
// postal code yields ok=false, never an error.
func (g *Gazetteer) Resolve(postalCode, locality string) (Coordinate, bool) {
	rows := g.byCode[NormalizePostalCode(postalCode)]
	if len(rows) == 0 {
		return Coordinate{}, false
	}

	locClean := strings.TrimSpace(unquote(locality))
	candidates := rows
	if locClean != "" {
		locNorm := foldAccents(locClean)

		var exact []entry
		for _, row := range rows {
			if foldAccents(row.Place) == locNorm {
				exact = append(exact, row)
			}
		}
		if len(exact) > 0 {
			candidates = exact
		} else {
			var partial []entry
			for _, row := range rows {
				place := foldAccents(row.Place)
				if strings.Contains(place, locNorm) || strings.Contains(locNorm, place) {
					partial = append(partial, row)
				}
			}
			if len(partial) > 0 {
				candidates = partial
			}
		}
	}

	best := candidates[0]
	for _, row := range candidates[1:] {
		if row.Accuracy > best.Accuracy {
			best = row
		}
	}
	return Coordinate{Lon: best.Lon, Lat: best.Lat}, true
}

// Localities returns the distinct place names recorded for a postal code,
// in file order.
func (g *Gazetteer) Localities(postalCode string) []string {
	rows := g.byCode[NormalizePostalCode(postalCode)]
	seen := make(map[string]struct{}, len(rows))
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.Place]; ok {
			continue
		}
		seen[row.Place] = struct{}{}
		names = append(names, row.Place)
	}
	return names
}

// NormalizePostalCode trims and zero-pads a postal code to five digits.
// Non-numeric input is returned trimmed only.
func NormalizePostalCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) < 5 && code != "" && isDigits(code) {
		code = strings.Repeat("0", 5-len(code)) + code
	}
	return code
}

// ValidPostalCode reports whether the code is exactly five digits.
func ValidPostalCode(code string) bool {
	return len(code) == 5 && isDigits(code)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldAccents lower-cases and strips combining marks so "Móstoles" matches
// "mostoles".
func foldAccents(s string) string {
	folded, _, err := transform.String(accentFolder, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return folded
}

// unquote strips one matching pair of surrounding single or double quotes.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '"' || s[0] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

var (
	defaultGazetteer *Gazetteer
	setupOnce        sync.Once
)

// Setup loads the gazetteer configured via GAZETTEER_FILE. A missing file is
// logged, not fatal: resolution then always reports "not found" and the
// matching layer falls back to its inclusion policy.
func Setup() {
	setupOnce.Do(func() {
		path := env.GetEnv("GAZETTEER_FILE", "data/postal_codes.txt")
		g, err := Load(path)
		if err != nil {
			log.Errorf("[Gazetteer] Could not load %s: %v", path, err)
			defaultGazetteer = &Gazetteer{byCode: map[string][]entry{}}
			return
		}
		log.Infof("[Gazetteer] Loaded %d postal codes from %s", len(g.byCode), path)
		defaultGazetteer = g
	})
}

// Get returns the process-wide gazetteer, loading it on first use.
func Get() *Gazetteer {
	Setup()
	return defaultGazetteer
}
