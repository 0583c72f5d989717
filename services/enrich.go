package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"book-hand/config"
	"book-hand/models"
)

// EnrichService reicht Editionen nach, denen nach Backfill und Dedup noch
// Ereignis- oder Format-Metadaten fehlen.
type EnrichService struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewEnrichService erstellt eine neue Instanz des EnrichService.
func NewEnrichService(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *EnrichService {
	return &EnrichService{Config: cfg, DB: db, Logger: logger}
}

// EnrichReport ist die Zusammenfassung eines Anreicherungs-Durchlaufs.
type EnrichReport struct {
	Processed  int `json:"processed"`
	Events     int `json:"events"`
	Formats    int `json:"formats"`
	Recomputed int `json:"recomputed"`
	Errors     int `json:"errors"`
}

// Run klassifiziert für jede datierte Edition ohne Release-Ereignis den
// Editionsvermerk und legt das fehlende Ereignis an; unbekannte Formate
// werden aus denselben Metadaten geraten. Betroffene Werke bekommen ihre
// abgeleiteten Daten neu berechnet.
func (s *EnrichService) Run(ctx context.Context) (EnrichReport, error) {
	report := EnrichReport{}
	now := time.Now().UTC()

	var editions []models.Edition
	if err := s.DB.Order("id asc").Find(&editions).Error; err != nil {
		s.Logger.Error("Editionen konnten nicht geladen werden", zap.Error(err))
		return report, err
	}

	touchedWorks := make(map[uint]bool)

	for i := range editions {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		edition := &editions[i]
		report.Processed++
		log := s.Logger.With(zap.Uint("edition_id", edition.ID))

		// Format nachziehen, falls noch unbekannt.
		if edition.Format == models.FormatUnknown || edition.Format == "" {
			if inferred := InferFormat(edition.EditionStatement, edition.CategoryList()); inferred != models.FormatUnknown {
				if err := s.DB.Model(edition).Update("format", inferred).Error; err != nil {
					report.Errors++
					log.Error("Format-Update fehlgeschlagen", zap.Error(err))
					continue
				}
				report.Formats++
			}
		}

		// Ereignis nur für datierte Editionen ohne vorhandene Ereignisse.
		if edition.PublicationDate == nil {
			continue
		}
		var eventCount int64
		if err := s.DB.Model(&models.ReleaseEvent{}).
			Where("edition_id = ?", edition.ID).
			Count(&eventCount).Error; err != nil {
			report.Errors++
			log.Error("Ereigniszählung fehlgeschlagen", zap.Error(err))
			continue
		}
		if eventCount > 0 {
			continue
		}

		classification := ClassifyRelease(edition.EditionStatement, edition.CategoryList())
		event := models.ReleaseEvent{
			EditionID:     edition.ID,
			EventDate:     *edition.PublicationDate,
			EventType:     classification.Type,
			IsMajor:       classification.IsMajor,
			PromoStrength: classification.PromoStrength,
			Market:        edition.Market,
		}
		if err := s.DB.Create(&event).Error; err != nil {
			report.Errors++
			log.Error("Ereignis konnte nicht angelegt werden", zap.Error(err))
			continue
		}
		report.Events++
		touchedWorks[edition.WorkID] = true
	}

	for workID := range touchedWorks {
		if err := RecomputeWorkDates(s.DB, workID, now); err != nil {
			report.Errors++
			s.Logger.Error("Neuberechnung nach Anreicherung fehlgeschlagen",
				zap.Uint("work_id", workID), zap.Error(err))
			continue
		}
		report.Recomputed++
	}

	s.Logger.Info("Anreicherung abgeschlossen",
		zap.Int("processed", report.Processed),
		zap.Int("events", report.Events),
		zap.Int("formats", report.Formats),
		zap.Int("recomputed", report.Recomputed),
		zap.Int("errors", report.Errors))
	return report, nil
}
