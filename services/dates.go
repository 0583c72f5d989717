package services

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Grenzen, außerhalb derer ein Jahr als Parser-Rauschen gilt.
const (
	minPlausibleYear = 1000
	maxPlausibleYear = 3000
)

var (
	circaPrefixRe = regexp.MustCompile(`(?i)^\s*(?:circa|ca\.?)\s*`)
	nonDateCharRe = regexp.MustCompile(`[^0-9-]`)
)

// ParsePublicationDate interpretiert heterogene Freitext-Datumsangaben
// ("2024-03-15", "2024-03", "1987", "circa 1987", mit beliebigem Rauschen)
// und liefert ein UTC-Datum oder nil, wenn nichts Brauchbares drinsteckt.
// Fehlende Monats-/Tagesangaben werden auf 1 gesetzt. Die Funktion schlägt
// nie fehl; ein unbrauchbarer String ist kein Fehler.
func ParsePublicationDate(raw string) *time.Time {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	s = circaPrefixRe.ReplaceAllString(s, "")
	s = nonDateCharRe.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}

	parts := strings.Split(s, "-")

	year, err := strconv.Atoi(parts[0])
	if err != nil || year < minPlausibleYear || year > maxPlausibleYear {
		return nil
	}

	month, day := 1, 1
	if len(parts) > 1 && parts[1] != "" {
		month, err = strconv.Atoi(parts[1])
		if err != nil {
			return nil
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		day, err = strconv.Atoi(parts[2])
		if err != nil {
			return nil
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}

	// UTC, damit Zeitzonen den Kalendertag nicht verschieben.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}
