package services

import (
	"time"

	"gorm.io/gorm"

	"book-hand/models"
)

// WorkDates bündelt die vier abgeleiteten Datumsfelder eines Werks.
type WorkDates struct {
	OriginalPublication *time.Time
	LatestMajorRelease  *time.Time
	LatestAnyRelease    *time.Time
	NextMajorRelease    *time.Time
}

// AggregateReleaseDates reduziert die Release-Ereignisse eines Werks auf die
// vier abgeleiteten Datumsfelder. Leere Ereignismenge setzt alle Felder auf
// nil. Die Funktion ist eine reine Reduktion und damit idempotent.
func AggregateReleaseDates(events []models.ReleaseEvent, now time.Time) WorkDates {
	var dates WorkDates
	if len(events) == 0 {
		return dates
	}

	for _, event := range events {
		eventDate := event.EventDate
		if !eventDate.After(now) {
			// Vergangenheit (inklusive "jetzt").
			if event.EventType == models.EventOriginalRelease {
				if dates.OriginalPublication == nil || eventDate.Before(*dates.OriginalPublication) {
					d := eventDate
					dates.OriginalPublication = &d
				}
			}
			if event.IsMajor {
				if dates.LatestMajorRelease == nil || eventDate.After(*dates.LatestMajorRelease) {
					d := eventDate
					dates.LatestMajorRelease = &d
				}
			}
			if dates.LatestAnyRelease == nil || eventDate.After(*dates.LatestAnyRelease) {
				d := eventDate
				dates.LatestAnyRelease = &d
			}
		} else if event.IsMajor {
			// Zukunft: nur Major-Events interessieren für "next release".
			if dates.NextMajorRelease == nil || eventDate.Before(*dates.NextMajorRelease) {
				d := eventDate
				dates.NextMajorRelease = &d
			}
		}
	}
	return dates
}

// RecomputeWorkDates lädt alle Release-Ereignisse, die über die aktuellen
// Editionen des Werks erreichbar sind, und persistiert die vier abgeleiteten
// Datumsfelder. Historische, wegmigrierte Ereignisse zählen nie mit.
func RecomputeWorkDates(db *gorm.DB, workID uint, now time.Time) error {
	var editionIDs []uint
	if err := db.Model(&models.Edition{}).
		Where("work_id = ?", workID).
		Pluck("id", &editionIDs).Error; err != nil {
		return err
	}

	var events []models.ReleaseEvent
	if len(editionIDs) > 0 {
		if err := db.Where("edition_id IN ?", editionIDs).Find(&events).Error; err != nil {
			return err
		}
	}

	dates := AggregateReleaseDates(events, now)

	return db.Model(&models.Work{}).
		Where("id = ?", workID).
		Updates(map[string]interface{}{
			"original_publication_date": dates.OriginalPublication,
			"latest_major_release_date": dates.LatestMajorRelease,
			"latest_any_release_date":   dates.LatestAnyRelease,
			"next_major_release_date":   dates.NextMajorRelease,
		}).Error
}
