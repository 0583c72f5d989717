package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"book-hand/config"
	"book-hand/models"
	"book-hand/storage"
)

// BackfillService macht aus rohen Katalogeinträgen kanonische Werke mit
// genau einer Edition und, falls ein Datum bekannt ist, einem
// ORIGINAL_RELEASE-Ereignis.
type BackfillService struct {
	Config   *config.Config
	DB       *gorm.DB
	S3Client *s3.Client
	Logger   *zap.Logger
}

// NewBackfillService erstellt eine neue Instanz des BackfillService.
func NewBackfillService(cfg *config.Config, db *gorm.DB, s3Client *s3.Client, logger *zap.Logger) *BackfillService {
	return &BackfillService{Config: cfg, DB: db, S3Client: s3Client, Logger: logger}
}

// BackfillReport ist die Zusammenfassung eines Backfill-Durchlaufs.
type BackfillReport struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Errors    int `json:"errors"`
}

// Run verarbeitet alle noch nicht backfillten Katalogeinträge. Fehler eines
// einzelnen Eintrags werden geloggt und gezählt, der Batch läuft weiter.
func (s *BackfillService) Run(ctx context.Context) (BackfillReport, error) {
	report := BackfillReport{}

	var records []models.CatalogRecord
	if err := s.DB.Where("backfilled = ?", false).Order("id asc").Find(&records).Error; err != nil {
		s.Logger.Error("Katalogeinträge konnten nicht geladen werden", zap.Error(err))
		return report, err
	}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		record := &records[i]
		report.Processed++
		if err := s.backfillRecord(ctx, record); err != nil {
			report.Errors++
			s.Logger.Error("Backfill für Katalogeintrag fehlgeschlagen",
				zap.Uint("record_id", record.ID),
				zap.String("title", record.Title),
				zap.Error(err))
			continue
		}
		report.Created++
	}

	s.Logger.Info("Backfill abgeschlossen",
		zap.Int("processed", report.Processed),
		zap.Int("created", report.Created),
		zap.Int("errors", report.Errors))
	return report, nil
}

// backfillRecord erzeugt Work + Edition (+ ORIGINAL_RELEASE) für einen
// einzelnen Katalogeintrag und markiert ihn als backfilled.
func (s *BackfillService) backfillRecord(ctx context.Context, record *models.CatalogRecord) error {
	if record.Title == "" {
		return fmt.Errorf("record %d has no title", record.ID)
	}

	pubDate := ParsePublicationDate(record.PublishedDateText)
	strippedTitle, seriesOrder := ExtractSeries(record.Title)

	work := models.Work{
		Title:           record.Title,
		Authors:         record.Authors,
		Description:     record.Description,
		SeriesOrder:     seriesOrder,
		MatchConfidence: 100, // 1:1 aus einem Quelleintrag erzeugt
	}
	if seriesOrder != nil {
		work.Series = strippedTitle
	}
	if err := s.DB.Create(&work).Error; err != nil {
		return fmt.Errorf("create work: %w", err)
	}

	edition := models.Edition{
		WorkID:           work.ID,
		Format:           InferFormat(record.EditionStatement, record.CategoryList()),
		PublicationDate:  pubDate,
		Language:         record.Language,
		ExternalID:       record.ExternalID,
		SourceRecordID:   &record.ID,
		EditionStatement: record.EditionStatement,
		PageCount:        record.PageCount,
		Categories:       record.Categories,
		CoverURL:         record.CoverURL,
	}
	switch len(normalizeISBN(record.ISBN)) {
	case 13:
		edition.ISBN13 = normalizeISBN(record.ISBN)
	case 10:
		edition.ISBN10 = normalizeISBN(record.ISBN)
	}
	if err := s.DB.Create(&edition).Error; err != nil {
		return fmt.Errorf("create edition: %w", err)
	}

	// Cover best-effort nach S3 spiegeln; Fehler blockieren den Backfill nicht.
	if record.CoverURL != "" && s.S3Client != nil && s.Config.S3Enabled() {
		if link, err := storage.MirrorCover(ctx, s.S3Client, s.Config, edition.ID, record.CoverURL); err != nil {
			s.Logger.Warn("Cover-Spiegelung fehlgeschlagen",
				zap.Uint("edition_id", edition.ID), zap.Error(err))
		} else {
			s.DB.Model(&edition).Update("cover_s3_link", link)
		}
	}

	if pubDate != nil {
		event := models.ReleaseEvent{
			EditionID:     edition.ID,
			EventDate:     *pubDate,
			EventType:     models.EventOriginalRelease,
			IsMajor:       true,
			PromoStrength: 100,
			Market:        edition.Market,
		}
		if err := s.DB.Create(&event).Error; err != nil {
			return fmt.Errorf("create original release event: %w", err)
		}
	}

	if err := RecomputeWorkDates(s.DB, work.ID, time.Now().UTC()); err != nil {
		return fmt.Errorf("recompute dates: %w", err)
	}

	displayUpdates := map[string]interface{}{"display_edition_id": edition.ID}
	if err := s.DB.Model(&models.Work{}).Where("id = ?", work.ID).Updates(displayUpdates).Error; err != nil {
		return fmt.Errorf("set display edition: %w", err)
	}

	return s.DB.Model(record).Updates(map[string]interface{}{
		"backfilled": true,
		"edition_id": edition.ID,
	}).Error
}
