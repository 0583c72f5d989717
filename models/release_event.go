package models

import (
	"strings"
	"time"
)

// EventType ist die geschlossene Menge der Release-Ereignistypen.
type EventType string

const (
	EventOriginalRelease    EventType = "ORIGINAL_RELEASE"
	EventFormatFirstRelease EventType = "FORMAT_FIRST_RELEASE"
	EventNewTranslation     EventType = "NEW_TRANSLATION"
	EventRevisedExpanded    EventType = "REVISED_EXPANDED"
	EventSpecialEdition     EventType = "SPECIAL_EDITION"
	EventMajorReissuePromo  EventType = "MAJOR_REISSUE_PROMO"
	EventMinorReprint       EventType = "MINOR_REPRINT"
)

// Valid meldet, ob der Typ zur geschlossenen Ereignismenge gehört.
func (t EventType) Valid() bool {
	switch t {
	case EventOriginalRelease, EventFormatFirstRelease, EventNewTranslation,
		EventRevisedExpanded, EventSpecialEdition, EventMajorReissuePromo,
		EventMinorReprint:
		return true
	}
	return false
}

// DefaultMajor liefert das Major-Flag, das ein manuell angelegtes Ereignis
// dieses Typs bekommt, wenn der Aufrufer nichts anderes sagt.
func (t EventType) DefaultMajor() bool {
	switch t {
	case EventOriginalRelease, EventFormatFirstRelease, EventNewTranslation,
		EventRevisedExpanded, EventSpecialEdition, EventMajorReissuePromo:
		return true
	case EventMinorReprint:
		return false
	}
	return false
}

// ReleaseEvent repräsentiert einen einzelnen datierten Markteintritt einer
// Ausgabe. Nach der Erzeugung unveränderlich (nur Notes dürfen ergänzt werden).
type ReleaseEvent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EditionID uint      `json:"edition_id" gorm:"index;not null"`
	EventDate time.Time `json:"event_date" gorm:"index;not null"`
	EventType EventType `json:"event_type" gorm:"not null"`

	// Major-Events bestimmen die "latest major release"-Sicht eines Werks.
	IsMajor       bool   `json:"is_major"`
	PromoStrength int    `json:"promo_strength"` // 0-100
	Market        string `json:"market,omitempty"`
	Notes         string `json:"notes,omitempty" gorm:"type:text"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (ReleaseEvent) TableName() string {
	return "release_events"
}

// splitList zerlegt ein "; "-getrenntes Speicherfeld.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// JoinList baut das Speicherformat aus einer Liste (z.B. Kategorien).
func JoinList(items []string) string {
	var kept []string
	for _, it := range items {
		if trimmed := strings.TrimSpace(it); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "; ")
}
