package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"book-hand/config"
	"book-hand/models"
)

// DedupService fasst Duplikat-Werke in einem Batch-Durchlauf zusammen.
type DedupService struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewDedupService erstellt eine neue Instanz des DedupService.
func NewDedupService(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *DedupService {
	return &DedupService{Config: cfg, DB: db, Logger: logger}
}

// DedupReport ist die Zusammenfassung eines Dedup-Durchlaufs.
type DedupReport struct {
	Works    int `json:"works"`
	Clusters int `json:"clusters"`
	Compared int `json:"compared"`
	Merged   int `json:"merged"`
	Errors   int `json:"errors"`
}

// Run führt einen vollständigen Dedup-Durchlauf aus: alle Werke laden, nach
// normalisiertem serien-bereinigtem Titel clustern, innerhalb jedes Clusters
// jedes ungeordnete Paar einmal vergleichen und ab dem Schwellwert
// zusammenführen. Der Durchlauf ist gierig und einfach: ein bereits
// wegmigriertes Werk wird im Rest des Durchlaufs nicht mehr angefasst. Eine
// transitive Kette ähnlicher Werke kann dadurch in einem Cluster landen, auch
// wenn die Enden der Kette einzeln unter dem Schwellwert liegen; das ist eine
// bekannte Eigenschaft des Verfahrens.
func (s *DedupService) Run(ctx context.Context) (DedupReport, error) {
	report := DedupReport{}
	threshold := s.Config.MatchThreshold
	now := time.Now().UTC()

	var works []models.Work
	if err := s.DB.Order("id asc").Find(&works).Error; err != nil {
		s.Logger.Error("Werke konnten nicht geladen werden", zap.Error(err))
		return report, err
	}
	report.Works = len(works)

	// Clustering-Schlüssel: normalisierter Titel ohne Serienfragment.
	clusters := make(map[string][]models.Work)
	for _, w := range works {
		stripped, _ := ExtractSeries(w.Title)
		key := NormalizeTitle(stripped)
		if key == "" {
			continue
		}
		clusters[key] = append(clusters[key], w)
	}

	merged := make(map[uint]bool)

	for key, cluster := range clusters {
		if len(cluster) < 2 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Clusters++
		log := s.Logger.With(zap.String("cluster", key), zap.Int("size", len(cluster)))
		log.Debug("Prüfe Titel-Cluster auf Duplikate.")

		for i := 0; i < len(cluster); i++ {
			for j := i + 1; j < len(cluster); j++ {
				a, b := cluster[i], cluster[j]
				if merged[a.ID] || merged[b.ID] {
					continue
				}
				if a.IsManuallyConfirmed || b.IsManuallyConfirmed {
					continue
				}

				report.Compared++
				score := ScoreMatch(s.workKey(&a), s.workKey(&b))
				if score < threshold {
					continue
				}

				// Das ältere Werk (kleinere ID) überlebt.
				winnerID, loserID := a.ID, b.ID
				if loserID < winnerID {
					winnerID, loserID = loserID, winnerID
				}

				if err := MergeWorks(s.DB, s.Logger, winnerID, loserID, score, now); err != nil {
					report.Errors++
					log.Error("Merge fehlgeschlagen",
						zap.Uint("winner_id", winnerID),
						zap.Uint("loser_id", loserID),
						zap.Error(err))
					continue
				}
				report.Merged++
				merged[loserID] = true
			}
		}
	}

	s.Logger.Info("Dedup-Durchlauf abgeschlossen",
		zap.Int("works", report.Works),
		zap.Int("clusters", report.Clusters),
		zap.Int("compared", report.Compared),
		zap.Int("merged", report.Merged),
		zap.Int("errors", report.Errors))
	return report, nil
}

// workKey baut die Scoring-Projektion eines Werks. Als ISBN dient die erste
// gefundene Edition-ISBN, ISBN-13 bevorzugt.
func (s *DedupService) workKey(w *models.Work) WorkKey {
	key := WorkKey{Title: w.Title, Authors: w.AuthorList()}

	var editions []models.Edition
	if err := s.DB.Where("work_id = ?", w.ID).Order("id asc").Find(&editions).Error; err != nil {
		s.Logger.Warn("Editionen für ISBN-Lookup nicht ladbar",
			zap.Uint("work_id", w.ID), zap.Error(err))
		return key
	}
	for _, e := range editions {
		if e.ISBN13 != "" {
			key.ISBN = e.ISBN13
			return key
		}
	}
	for _, e := range editions {
		if e.ISBN10 != "" {
			key.ISBN = e.ISBN10
			return key
		}
	}
	return key
}
