package models

import (
	"time"
)

// CatalogRecord ist ein roher, flacher Katalogeintrag, wie ihn die externen
// Such-Provider liefern. Der Backfill macht daraus Work + Edition.
type CatalogRecord struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Zugehöriger Suchbegriff
	Query string `json:"query,omitempty" gorm:"index"`

	Title             string `json:"title" gorm:"not null"`
	Authors           string `json:"authors,omitempty"` // "; "-getrennt
	Description       string `json:"description,omitempty" gorm:"type:text"`
	PublishedDateText string `json:"published_date_text,omitempty"` // Freitext, wird vom DateParser interpretiert
	ISBN              string `json:"isbn,omitempty" gorm:"index"`
	CoverURL          string `json:"cover_url,omitempty"`
	ExternalID        string `json:"external_id,omitempty" gorm:"index"`
	Source            string `json:"source,omitempty" gorm:"index"` // Provider-Name
	PageCount         int    `json:"page_count,omitempty"`
	Categories        string `json:"categories,omitempty" gorm:"type:text"`
	EditionStatement  string `json:"edition_statement,omitempty"`
	Language          string `json:"language,omitempty"`

	// Backfill-Status: gesetzt, sobald aus dem Eintrag Work + Edition
	// erzeugt wurden.
	Backfilled bool  `json:"backfilled" gorm:"index"`
	EditionID  *uint `json:"edition_id,omitempty"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (CatalogRecord) TableName() string {
	return "catalog_records"
}

// AuthorList zerlegt das Authors-Feld in die geordnete Autorenliste.
func (r *CatalogRecord) AuthorList() []string {
	return splitList(r.Authors)
}

// CategoryList zerlegt das Categories-Feld in einzelne Kategorien.
func (r *CatalogRecord) CategoryList() []string {
	return splitList(r.Categories)
}
