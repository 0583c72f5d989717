package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"book-hand/config"
	"book-hand/models"
)

// Sortiermodi der Browse-Abfrage.
const (
	SortOriginal    = "original"
	SortLatestMajor = "latestMajor"
	SortLatestAny   = "latestAny"
	SortTitle       = "title"
)

// BrowseQuery beschreibt eine Lese-Abfrage über die kanonischen Werke.
type BrowseQuery struct {
	SortMode                string   `json:"sort_mode"`
	RecentWindowDays        int      `json:"recent_window_days"`
	ExcludeEditionSourceIDs []string `json:"exclude_edition_source_ids"`
	Limit                   int      `json:"limit"`
	Offset                  int      `json:"offset"`
}

// BrowseItem ist ein Werk plus Cover und Format seiner Anzeige-Edition.
type BrowseItem struct {
	models.Work
	CoverURL string               `json:"cover_url,omitempty"`
	Format   models.EditionFormat `json:"format,omitempty"`
}

// BrowseService beantwortet die Lese-Abfragen der Browse-Oberfläche.
type BrowseService struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewBrowseService erstellt eine neue Instanz des BrowseService.
func NewBrowseService(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *BrowseService {
	return &BrowseService{Config: cfg, DB: db, Logger: logger}
}

// Query lädt Werke gemäß Sortiermodus und Filtern und reichert jedes Ergebnis
// mit Cover und Format seiner Anzeige-Edition an.
func (s *BrowseService) Query(q BrowseQuery) ([]BrowseItem, error) {
	query := s.DB.Model(&models.Work{})

	switch q.SortMode {
	case SortOriginal, "":
		// Ursprüngliche Erscheinungsreihenfolge.
		query = query.Order("original_publication_date asc").Order("id asc")
	case SortLatestMajor:
		query = query.Where("latest_major_release_date IS NOT NULL").
			Order("latest_major_release_date desc").Order("id asc")
	case SortLatestAny:
		query = query.Where("latest_any_release_date IS NOT NULL").
			Order("latest_any_release_date desc").Order("id asc")
	case SortTitle:
		query = query.Order("title asc").Order("id asc")
	default:
		return nil, fmt.Errorf("unknown sort mode %q", q.SortMode)
	}

	if q.RecentWindowDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -q.RecentWindowDays)
		query = query.Where("latest_any_release_date >= ?", cutoff)
	}

	if len(q.ExcludeEditionSourceIDs) > 0 {
		sub := s.DB.Model(&models.Edition{}).
			Select("work_id").
			Where("external_id IN ?", q.ExcludeEditionSourceIDs)
		query = query.Where("id NOT IN (?)", sub)
	}

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var works []models.Work
	if err := query.Find(&works).Error; err != nil {
		s.Logger.Error("Browse-Abfrage fehlgeschlagen", zap.Error(err))
		return nil, err
	}

	items := make([]BrowseItem, 0, len(works))
	for _, w := range works {
		item := BrowseItem{Work: w}

		// Anzeige-Edition laden; ohne gesetzte Anzeige-Edition nimmt die
		// Oberfläche die älteste Edition des Werks.
		var edition models.Edition
		var err error
		if w.DisplayEditionID != nil {
			err = s.DB.First(&edition, *w.DisplayEditionID).Error
		} else {
			err = s.DB.Where("work_id = ?", w.ID).Order("id asc").First(&edition).Error
		}
		if err == nil {
			item.CoverURL = edition.CoverURL
			if edition.CoverS3Link != "" {
				item.CoverURL = edition.CoverS3Link
			}
			item.Format = edition.Format
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.Logger.Warn("Anzeige-Edition nicht ladbar",
				zap.Uint("work_id", w.ID), zap.Error(err))
		}

		items = append(items, item)
	}
	return items, nil
}
