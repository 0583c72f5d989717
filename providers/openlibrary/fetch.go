package openlibrary

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"book-hand/config"
	"book-hand/models"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Fetcher implementiert das Provider-Interface für Open Library.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Open Library Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "openlibrary"
}

// Search führt die Suche auf Open Library aus.
func (f *Fetcher) Search(term string) ([]*models.CatalogRecord, error) {
	log := f.Logger.With(zap.String("term", term))
	log.Info("Starte Suche auf Open Library.")

	limit := f.Config.OpenLibraryLimit
	if limit <= 0 {
		limit = 100
	}
	searchURL := fmt.Sprintf("%s/search.json?q=%s&limit=%d",
		f.Config.OpenLibraryBaseURL, url.QueryEscape(term), limit)
	log.Debug("Rufe Open Library API auf", zap.String("url", searchURL))

	resp, err := httpClient.Get(searchURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open library request failed with status: %d", resp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}

	var records []*models.CatalogRecord
	for i := range searchResponse.Docs {
		records = append(records, mapDocToRecord(&searchResponse.Docs[i]))
	}

	log.Info("Suche auf Open Library abgeschlossen", zap.Int("found_records", len(records)))
	return records, nil
}

// mapDocToRecord konvertiert ein Open Library Doc-Objekt in unser internes
// CatalogRecord-Modell.
func mapDocToRecord(doc *Doc) *models.CatalogRecord {
	record := &models.CatalogRecord{
		Title:      doc.Title,
		Authors:    models.JoinList(doc.AuthorName),
		Categories: models.JoinList(doc.Subject),
		ExternalID: "openlibrary:" + doc.Key,
		Source:     "openlibrary",
		PageCount:  doc.NumberOfPages,
	}

	if doc.FirstPublishYear > 0 {
		record.PublishedDateText = strconv.Itoa(doc.FirstPublishYear)
	}
	if len(doc.ISBN) > 0 {
		// ISBN-13 bevorzugen, sonst die erste gelistete Kennung.
		record.ISBN = doc.ISBN[0]
		for _, isbn := range doc.ISBN {
			if len(isbn) == 13 {
				record.ISBN = isbn
				break
			}
		}
	}
	if len(doc.Language) > 0 {
		record.Language = doc.Language[0]
	}
	if doc.CoverI > 0 {
		record.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-L.jpg", doc.CoverI)
	}

	return record
}
