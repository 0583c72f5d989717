package models

import (
	"strings"
	"time"
)

// Work repräsentiert ein kanonisches literarisches Werk, unabhängig von
// einzelnen Ausgaben oder Drucken.
type Work struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title       string `json:"title" gorm:"not null;index"`
	Authors     string `json:"authors,omitempty"` // "; "-getrennt, Reihenfolge bleibt erhalten
	Description string `json:"description,omitempty" gorm:"type:text"`

	Series      string `json:"series,omitempty" gorm:"index"`
	SeriesOrder *int   `json:"series_order,omitempty"`

	// Abgeleitete Datumsfelder. Werden ausschließlich vom DateAggregator
	// gesetzt, niemals direkt von Aufrufern.
	OriginalPublicationDate *time.Time `json:"original_publication_date,omitempty" gorm:"index"`
	LatestMajorReleaseDate  *time.Time `json:"latest_major_release_date,omitempty" gorm:"index"`
	LatestAnyReleaseDate    *time.Time `json:"latest_any_release_date,omitempty" gorm:"index"`
	NextMajorReleaseDate    *time.Time `json:"next_major_release_date,omitempty"`

	DisplayEditionID *uint `json:"display_edition_id,omitempty"`

	// Provenienz: wie sicher war der Abgleich, der dieses Werk erzeugt bzw.
	// zuletzt zusammengeführt hat (0-100).
	MatchConfidence int `json:"match_confidence"`

	// Einmal bestätigt, wird das Werk nie wieder automatisch zusammengeführt.
	IsManuallyConfirmed bool `json:"is_manually_confirmed" gorm:"index"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Work) TableName() string {
	return "works"
}

// AuthorList zerlegt das Authors-Feld in die geordnete Autorenliste.
func (w *Work) AuthorList() []string {
	if strings.TrimSpace(w.Authors) == "" {
		return nil
	}
	parts := strings.Split(w.Authors, ";")
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			authors = append(authors, trimmed)
		}
	}
	return authors
}

// JoinAuthors baut das Speicherformat aus einer geordneten Autorenliste.
func JoinAuthors(authors []string) string {
	var kept []string
	for _, a := range authors {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "; ")
}
