package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"book-hand/models"
)

// ErrWorkConfirmed signalisiert den Versuch, ein manuell bestätigtes Werk
// automatisch zusammenzuführen.
var ErrWorkConfirmed = errors.New("work is manually confirmed")

// MergeWorks überträgt alle Editionen des Verlierer-Werks auf den Gewinner,
// rechnet dessen abgeleitete Daten neu und löscht den Verlierer. Der Besitz
// wandert per UPDATE, es wird nichts kopiert. Ein bereits verschwundener
// Verlierer ist kein Fehler, sondern ein stilles No-Op; damit ist die
// Operation idempotent, wenn ein Paar versehentlich erneut verarbeitet wird.
func MergeWorks(db *gorm.DB, log *zap.Logger, winnerID, loserID uint, confidence int, now time.Time) error {
	if winnerID == loserID {
		return fmt.Errorf("cannot merge work %d into itself", winnerID)
	}

	var winner models.Work
	if err := db.First(&winner, winnerID).Error; err != nil {
		return fmt.Errorf("load winner work %d: %w", winnerID, err)
	}

	var loser models.Work
	if err := db.First(&loser, loserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Debug("Verlierer-Werk existiert nicht mehr, Merge wird übersprungen.",
				zap.Uint("winner_id", winnerID), zap.Uint("loser_id", loserID))
			return nil
		}
		return fmt.Errorf("load loser work %d: %w", loserID, err)
	}

	if winner.IsManuallyConfirmed || loser.IsManuallyConfirmed {
		return ErrWorkConfirmed
	}

	// 1. Besitzübertragung aller Editionen.
	if err := db.Model(&models.Edition{}).
		Where("work_id = ?", loserID).
		Update("work_id", winnerID).Error; err != nil {
		return fmt.Errorf("reassign editions of work %d: %w", loserID, err)
	}

	// Survivorship: leere Gewinner-Felder aus dem Verlierer auffüllen.
	updates := map[string]interface{}{}
	if winner.Description == "" && loser.Description != "" {
		updates["description"] = loser.Description
	}
	if winner.Series == "" && loser.Series != "" {
		updates["series"] = loser.Series
	}
	if winner.SeriesOrder == nil && loser.SeriesOrder != nil {
		updates["series_order"] = loser.SeriesOrder
	}
	if confidence > 0 {
		updates["match_confidence"] = confidence
	}
	if len(updates) > 0 {
		if err := db.Model(&models.Work{}).Where("id = ?", winnerID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update winner work %d: %w", winnerID, err)
		}
	}

	// 2. Abgeleitete Daten über die Vereinigung beider Ereignismengen.
	if err := RecomputeWorkDates(db, winnerID, now); err != nil {
		return fmt.Errorf("recompute dates for work %d: %w", winnerID, err)
	}

	// 3. Verlierer löschen. Schlägt das fehl, bleibt ein Werk ohne Editionen
	// zurück; das ist ein harmloser Endzustand, kein Reparaturfall.
	if err := db.Delete(&models.Work{}, loserID).Error; err != nil {
		return fmt.Errorf("delete merged work %d: %w", loserID, err)
	}

	log.Info("Werke zusammengeführt",
		zap.Uint("winner_id", winnerID),
		zap.Uint("loser_id", loserID),
		zap.Int("confidence", confidence))
	return nil
}
