package models

// SearchQuery repräsentiert einen gespeicherten Suchbegriff, nach dem bei den
// externen Katalog-Providern gesucht wird.
type SearchQuery struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Term string `json:"term" gorm:"uniqueIndex;not null"` // z.B. "robert jordan wheel of time"
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (SearchQuery) TableName() string {
	return "search_queries"
}
