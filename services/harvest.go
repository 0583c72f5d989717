package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"book-hand/config"
	"book-hand/models"
	"book-hand/providers"
)

// HarvestService kümmert sich um die Orchestrierung der Katalog-Provider:
// gespeicherte Suchbegriffe abfragen und neue Einträge in die
// catalog_records-Tabelle schreiben. Der Backfill übernimmt von dort.
type HarvestService struct {
	Config    *config.Config
	DB        *gorm.DB
	Logger    *zap.Logger
	Providers []providers.Provider
}

// NewHarvestService erstellt eine neue Instanz des HarvestService.
func NewHarvestService(cfg *config.Config, db *gorm.DB, logger *zap.Logger, provs []providers.Provider) *HarvestService {
	return &HarvestService{Config: cfg, DB: db, Logger: logger, Providers: provs}
}

// RunAllQueries führt die Suche für alle gespeicherten Suchbegriffe aus und
// gibt die Zahl der neu angelegten Katalogeinträge zurück.
func (h *HarvestService) RunAllQueries(ctx context.Context) (int, error) {
	var queries []models.SearchQuery
	if err := h.DB.Find(&queries).Error; err != nil {
		h.Logger.Error("Suchbegriffe konnten nicht geladen werden", zap.Error(err))
		return 0, err
	}

	totalNew := 0
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return totalNew, err
		}
		count, err := h.RunForQuery(ctx, q)
		if err != nil {
			h.Logger.Error("Fehler beim Verarbeiten des Suchbegriffs",
				zap.String("term", q.Term), zap.Error(err))
			continue
		}
		totalNew += count
	}
	return totalNew, nil
}

// RunForQuery fragt alle Provider für einen Suchbegriff ab, de-dupliziert die
// Ergebnisse über die externe ID und legt nur bislang unbekannte Einträge an.
func (h *HarvestService) RunForQuery(ctx context.Context, query models.SearchQuery) (int, error) {
	log := h.Logger.With(zap.String("term", query.Term))
	log.Info("Starte Harvest für Suchbegriff.")

	allRecords := make(map[string]*models.CatalogRecord) // De-Duplizierung über Provider hinweg

	for _, provider := range h.Providers {
		records, err := provider.Search(query.Term)
		if err != nil {
			log.Error("Provider-Suche fehlgeschlagen",
				zap.String("provider", provider.Name()), zap.Error(err))
			continue
		}
		log.Info("Provider hat Ergebnisse geliefert",
			zap.String("provider", provider.Name()), zap.Int("count", len(records)))

		for _, record := range records {
			record.Query = query.Term
			key := record.ExternalID
			if key == "" && record.ISBN != "" { // Fallback auf ISBN, falls keine externe ID
				key = record.ISBN
			}
			if key == "" {
				continue
			}
			if _, exists := allRecords[key]; !exists {
				allRecords[key] = record
			}
		}
	}

	newCount := 0
	for key, record := range allRecords {
		if err := ctx.Err(); err != nil {
			return newCount, err
		}

		// Duplikatsprüfung über denselben Schlüssel, unter dem der Eintrag
		// de-dupliziert wurde: externe ID, sonst ISBN.
		var existing models.CatalogRecord
		dupQuery := h.DB.Where("external_id = ?", record.ExternalID)
		if record.ExternalID == "" {
			dupQuery = h.DB.Where("external_id = ? AND isbn = ?", "", record.ISBN)
		}
		err := dupQuery.First(&existing).Error
		if err == nil {
			continue // bereits bekannt
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("Duplikatsprüfung fehlgeschlagen",
				zap.String("key", key), zap.Error(err))
			continue
		}

		if err := h.DB.Create(record).Error; err != nil {
			log.Error("Katalogeintrag konnte nicht angelegt werden",
				zap.String("external_id", record.ExternalID), zap.Error(err))
			continue
		}
		newCount++
	}

	log.Info("Harvest für Suchbegriff abgeschlossen", zap.Int("new_records", newCount))
	return newCount, nil
}
