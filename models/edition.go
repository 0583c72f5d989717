package models

import (
	"time"
)

// EditionFormat ist die geschlossene Menge der bekannten Ausgabeformate.
type EditionFormat string

const (
	FormatUnknown   EditionFormat = "unknown"
	FormatHardcover EditionFormat = "hardcover"
	FormatPaperback EditionFormat = "paperback"
	FormatEbook     EditionFormat = "ebook"
	FormatAudiobook EditionFormat = "audiobook"
)

// Edition repräsentiert eine konkrete veröffentlichte Ausgabe eines Werks
// (Format/Druck/Markt). Eine Edition gehört zu genau einem Werk; der Besitz
// wechselt nur beim Zusammenführen von Duplikaten.
type Edition struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	WorkID uint          `json:"work_id" gorm:"index;not null"`
	Format EditionFormat `json:"format" gorm:"default:unknown"`

	PublicationDate *time.Time `json:"publication_date,omitempty"`
	Language        string     `json:"language,omitempty"`
	Market          string     `json:"market,omitempty"`

	ISBN10 string `json:"isbn10,omitempty" gorm:"index"`
	ISBN13 string `json:"isbn13,omitempty" gorm:"index"`

	// Externe Katalog-IDs (z.B. Google Books Volume-ID, Open Library Key).
	ExternalID string `json:"external_id,omitempty" gorm:"index"`

	// Rückverweis auf den ursprünglichen Katalogeintrag; dient nur der
	// "bereits backfilled"-Erkennung.
	SourceRecordID *uint `json:"source_record_id,omitempty" gorm:"index"`

	EditionStatement string `json:"edition_statement,omitempty"` // z.B. "25th Anniversary Edition"
	PageCount        int    `json:"page_count,omitempty"`
	Categories       string `json:"categories,omitempty" gorm:"type:text"` // "; "-getrennt
	CoverURL         string `json:"cover_url,omitempty"`
	CoverS3Link      string `json:"cover_s3_link,omitempty"`

	// true, wenn die Ausgabe von Hand eingetragen wurde statt aus der Ingestion.
	IsManual bool `json:"is_manual"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Edition) TableName() string {
	return "editions"
}

// CategoryList zerlegt das Categories-Feld in einzelne Kategorien.
func (e *Edition) CategoryList() []string {
	return splitList(e.Categories)
}
