package providers

import "book-hand/models"

// Provider ist das Interface, das jeder Katalog-Provider (z.B. Google Books,
// Open Library) implementieren muss.
type Provider interface {
	// Search führt eine Suche für einen gegebenen Term durch und gibt eine
	// Liste von standardisierten Katalogeinträgen zurück.
	Search(term string) ([]*models.CatalogRecord, error)

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "googlebooks").
	Name() string
}
