package googlebooks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"book-hand/config"
	"book-hand/models"
)

const pageSize = 40 // Maximum der Google Books API

var httpClient = &http.Client{Timeout: 60 * time.Second}

// Fetcher implementiert das Provider-Interface für Google Books.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher erstellt einen neuen Google Books Fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// Name gibt den Namen des Providers zurück.
func (f *Fetcher) Name() string {
	return "googlebooks"
}

// Search führt die Suche auf Google Books aus und blättert bis zum
// konfigurierten Seitenlimit durch die Ergebnisse.
func (f *Fetcher) Search(term string) ([]*models.CatalogRecord, error) {
	log := f.Logger.With(zap.String("term", term))
	log.Info("Starte Suche auf Google Books.")

	var records []*models.CatalogRecord
	maxPages := f.Config.GoogleBooksMaxPage
	if maxPages <= 0 {
		maxPages = 1
	}

	for page := 0; page < maxPages; page++ {
		searchURL := fmt.Sprintf("%s/volumes?q=%s&startIndex=%d&maxResults=%d",
			f.Config.GoogleBooksBaseURL, url.QueryEscape(term), page*pageSize, pageSize)
		if f.Config.GoogleBooksAPIKey != "" {
			searchURL += "&key=" + url.QueryEscape(f.Config.GoogleBooksAPIKey)
		}
		log.Debug("Rufe Google Books API auf", zap.Int("page", page))

		resp, err := httpClient.Get(searchURL)
		if err != nil {
			return nil, err
		}

		var searchResponse SearchResponse
		err = json.NewDecoder(resp.Body).Decode(&searchResponse)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		if len(searchResponse.Items) == 0 {
			break
		}
		for i := range searchResponse.Items {
			records = append(records, mapVolumeToRecord(&searchResponse.Items[i]))
		}
		if (page+1)*pageSize >= searchResponse.TotalItems {
			break
		}
	}

	log.Info("Suche auf Google Books abgeschlossen", zap.Int("found_records", len(records)))
	return records, nil
}

// mapVolumeToRecord konvertiert ein Volume-Objekt in unser internes
// CatalogRecord-Modell.
func mapVolumeToRecord(volume *Volume) *models.CatalogRecord {
	info := volume.VolumeInfo

	title := info.Title
	if info.Subtitle != "" {
		title = title + ": " + info.Subtitle
	}

	record := &models.CatalogRecord{
		Title:             title,
		Authors:           models.JoinList(info.Authors),
		Description:       info.Description,
		PublishedDateText: info.PublishedDate,
		PageCount:         info.PageCount,
		Categories:        models.JoinList(info.Categories),
		Language:          info.Language,
		ExternalID:        "googlebooks:" + volume.ID,
		Source:            "googlebooks",
	}

	// ISBN-13 bevorzugen, ISBN-10 als Fallback.
	for _, id := range info.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			record.ISBN = id.Identifier
			break
		}
		if id.Type == "ISBN_10" && record.ISBN == "" {
			record.ISBN = id.Identifier
		}
	}

	if info.ImageLinks.Thumbnail != "" {
		// Google liefert http-Links; die Oberfläche braucht https.
		record.CoverURL = strings.Replace(info.ImageLinks.Thumbnail, "http://", "https://", 1)
	} else if info.ImageLinks.SmallThumbnail != "" {
		record.CoverURL = strings.Replace(info.ImageLinks.SmallThumbnail, "http://", "https://", 1)
	}

	return record
}
