package services

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"book-hand/models"
)

func TestMergeWorks(t *testing.T) {
	db := newTestDB(t)
	log := zap.NewNop()
	now := date(2024, time.January, 1)

	winner := models.Work{Title: "The Great Hunt", Authors: "Robert Jordan"}
	mustCreate(t, db, &winner)
	loser := models.Work{
		Title:       "Great Hunt, The",
		Authors:     "Robert Jordan",
		Description: "Book two of the Wheel of Time.",
		Series:      "the wheel of time",
	}
	mustCreate(t, db, &loser)

	winnerEd1 := models.Edition{WorkID: winner.ID, Format: models.FormatHardcover}
	winnerEd2 := models.Edition{WorkID: winner.ID, Format: models.FormatPaperback}
	loserEd := models.Edition{WorkID: loser.ID, Format: models.FormatEbook}
	mustCreate(t, db, &winnerEd1)
	mustCreate(t, db, &winnerEd2)
	mustCreate(t, db, &loserEd)

	mustCreate(t, db, &models.ReleaseEvent{
		EditionID: winnerEd1.ID, EventDate: date(1990, time.November, 15),
		EventType: models.EventOriginalRelease, IsMajor: true,
	})
	mustCreate(t, db, &models.ReleaseEvent{
		EditionID: winnerEd2.ID, EventDate: date(2000, time.March, 1),
		EventType: models.EventMinorReprint, IsMajor: false,
	})
	mustCreate(t, db, &models.ReleaseEvent{
		EditionID: winnerEd2.ID, EventDate: date(2012, time.May, 1),
		EventType: models.EventSpecialEdition, IsMajor: true,
	})
	mustCreate(t, db, &models.ReleaseEvent{
		EditionID: loserEd.ID, EventDate: date(2021, time.September, 1),
		EventType: models.EventMajorReissuePromo, IsMajor: true,
	})

	if err := MergeWorks(db, log, winner.ID, loser.ID, 85, now); err != nil {
		t.Fatalf("MergeWorks: %v", err)
	}

	// Der Verlierer ist weg, seine Editionen gehören jetzt dem Gewinner.
	var loserAfter models.Work
	if err := db.First(&loserAfter, loser.ID).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("loser work still exists (err = %v)", err)
	}
	var editionCount int64
	db.Model(&models.Edition{}).Where("work_id = ?", winner.ID).Count(&editionCount)
	if editionCount != 3 {
		t.Errorf("winner edition count = %d, want 3", editionCount)
	}

	var winnerAfter models.Work
	if err := db.First(&winnerAfter, winner.ID).Error; err != nil {
		t.Fatalf("load winner: %v", err)
	}

	// Survivorship: leere Felder aus dem Verlierer übernommen.
	if winnerAfter.Description != loser.Description {
		t.Errorf("description = %q, want survivorship fill %q", winnerAfter.Description, loser.Description)
	}
	if winnerAfter.Series != "the wheel of time" {
		t.Errorf("series = %q, want %q", winnerAfter.Series, "the wheel of time")
	}
	if winnerAfter.MatchConfidence != 85 {
		t.Errorf("match confidence = %d, want 85", winnerAfter.MatchConfidence)
	}

	// Abgeleitete Daten über die Vereinigung beider Ereignismengen.
	if winnerAfter.OriginalPublicationDate == nil || !winnerAfter.OriginalPublicationDate.Equal(date(1990, time.November, 15)) {
		t.Errorf("original = %v, want 1990-11-15", winnerAfter.OriginalPublicationDate)
	}
	if winnerAfter.LatestMajorReleaseDate == nil || !winnerAfter.LatestMajorReleaseDate.Equal(date(2021, time.September, 1)) {
		t.Errorf("latest major = %v, want 2021-09-01", winnerAfter.LatestMajorReleaseDate)
	}
	if winnerAfter.LatestAnyReleaseDate == nil || !winnerAfter.LatestAnyReleaseDate.Equal(date(2021, time.September, 1)) {
		t.Errorf("latest any = %v, want 2021-09-01", winnerAfter.LatestAnyReleaseDate)
	}

	// Wiederholung desselben Paars ist ein stilles No-Op.
	if err := MergeWorks(db, log, winner.ID, loser.ID, 85, now); err != nil {
		t.Fatalf("repeated merge should be a no-op, got %v", err)
	}
	db.Model(&models.Edition{}).Where("work_id = ?", winner.ID).Count(&editionCount)
	if editionCount != 3 {
		t.Errorf("edition count after repeat = %d, want 3", editionCount)
	}
}

func TestMergeWorksRefusesConfirmed(t *testing.T) {
	db := newTestDB(t)
	log := zap.NewNop()
	now := time.Now().UTC()

	confirmed := models.Work{Title: "Dune", IsManuallyConfirmed: true}
	other := models.Work{Title: "Dune"}
	mustCreate(t, db, &confirmed)
	mustCreate(t, db, &other)

	if err := MergeWorks(db, log, other.ID, confirmed.ID, 90, now); !errors.Is(err, ErrWorkConfirmed) {
		t.Fatalf("expected ErrWorkConfirmed, got %v", err)
	}
	if err := MergeWorks(db, log, confirmed.ID, other.ID, 90, now); !errors.Is(err, ErrWorkConfirmed) {
		t.Fatalf("expected ErrWorkConfirmed, got %v", err)
	}

	var count int64
	db.Model(&models.Work{}).Count(&count)
	if count != 2 {
		t.Errorf("work count = %d, want 2 (nothing merged)", count)
	}
}

func TestMergeWorksRejectsSelfMerge(t *testing.T) {
	db := newTestDB(t)

	w := models.Work{Title: "Dune"}
	mustCreate(t, db, &w)

	if err := MergeWorks(db, zap.NewNop(), w.ID, w.ID, 100, time.Now().UTC()); err == nil {
		t.Fatal("expected error merging a work into itself")
	}
}
