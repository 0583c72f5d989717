package services

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"book-hand/config"
	"book-hand/models"
)

func seedBrowseWorks(t *testing.T, svc *BrowseService) (models.Work, models.Work, models.Work) {
	t.Helper()
	db := svc.DB

	orig1990 := date(1990, time.November, 15)
	orig1968 := date(1968, time.September, 1)
	recent := time.Now().UTC().AddDate(0, 0, -10)
	old := date(2012, time.May, 1)

	hunt := models.Work{
		Title: "The Great Hunt", Authors: "Robert Jordan",
		OriginalPublicationDate: &orig1990,
		LatestMajorReleaseDate:  &recent,
		LatestAnyReleaseDate:    &recent,
	}
	mustCreate(t, db, &hunt)
	wizard := models.Work{
		Title: "A Wizard of Earthsea", Authors: "Ursula K. Le Guin",
		OriginalPublicationDate: &orig1968,
		LatestMajorReleaseDate:  &old,
		LatestAnyReleaseDate:    &old,
	}
	mustCreate(t, db, &wizard)
	undated := models.Work{Title: "Unscheduled Manuscript"}
	mustCreate(t, db, &undated)

	return hunt, wizard, undated
}

func TestBrowseQuerySortModes(t *testing.T) {
	svc := NewBrowseService(&config.Config{}, newTestDB(t), zap.NewNop())
	hunt, wizard, undated := seedBrowseWorks(t, svc)

	// Standard: ursprüngliche Erscheinungsreihenfolge.
	items, err := svc.Query(BrowseQuery{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("len = %d, want 3", len(items))
	}
	if indexOf(items, wizard.ID) > indexOf(items, hunt.ID) {
		t.Errorf("original order = %v, want work %d before work %d", itemIDs(items), wizard.ID, hunt.ID)
	}

	// latestMajor: absteigend, Werke ohne Datum herausgefiltert.
	items, err = svc.Query(BrowseQuery{SortMode: SortLatestMajor})
	if err != nil {
		t.Fatalf("Query latestMajor: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("latestMajor len = %d, want 2 (undated filtered)", len(items))
	}
	if items[0].ID != hunt.ID || items[1].ID != wizard.ID {
		t.Errorf("latestMajor order = [%d %d], want [%d %d]", items[0].ID, items[1].ID, hunt.ID, wizard.ID)
	}

	// title: alphabetisch, alle Werke.
	items, err = svc.Query(BrowseQuery{SortMode: SortTitle})
	if err != nil {
		t.Fatalf("Query title: %v", err)
	}
	if len(items) != 3 || items[0].ID != wizard.ID || items[2].ID != undated.ID {
		t.Errorf("title order unexpected: %v", itemIDs(items))
	}

	if _, err := svc.Query(BrowseQuery{SortMode: "banana"}); err == nil {
		t.Error("expected error for unknown sort mode")
	}
}

func TestBrowseQueryRecentWindow(t *testing.T) {
	svc := NewBrowseService(&config.Config{}, newTestDB(t), zap.NewNop())
	hunt, _, _ := seedBrowseWorks(t, svc)

	items, err := svc.Query(BrowseQuery{SortMode: SortLatestAny, RecentWindowDays: 90})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(items) != 1 || items[0].ID != hunt.ID {
		t.Errorf("recent window result = %v, want only work %d", itemIDs(items), hunt.ID)
	}
}

func TestBrowseQueryExcludesBySourceID(t *testing.T) {
	svc := NewBrowseService(&config.Config{}, newTestDB(t), zap.NewNop())
	hunt, _, _ := seedBrowseWorks(t, svc)
	db := svc.DB

	mustCreate(t, db, &models.Edition{WorkID: hunt.ID, ExternalID: "googlebooks:hunt"})

	items, err := svc.Query(BrowseQuery{
		SortMode:                SortTitle,
		ExcludeEditionSourceIDs: []string{"googlebooks:hunt"},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	for _, it := range items {
		if it.ID == hunt.ID {
			t.Errorf("excluded work %d still present", hunt.ID)
		}
	}
}

func TestBrowseQueryDisplayEdition(t *testing.T) {
	svc := NewBrowseService(&config.Config{}, newTestDB(t), zap.NewNop())
	db := svc.DB

	work := models.Work{Title: "Dune", Authors: "Frank Herbert"}
	mustCreate(t, db, &work)
	first := models.Edition{WorkID: work.ID, Format: models.FormatHardcover, CoverURL: "https://covers.example/first.jpg"}
	mustCreate(t, db, &first)
	display := models.Edition{
		WorkID: work.ID, Format: models.FormatPaperback,
		CoverURL:    "https://covers.example/display.jpg",
		CoverS3Link: "https://s3.example/covers/2.jpg",
	}
	mustCreate(t, db, &display)

	// Ohne Anzeige-Edition: älteste Edition.
	items, err := svc.Query(BrowseQuery{SortMode: SortTitle})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if items[0].CoverURL != first.CoverURL || items[0].Format != models.FormatHardcover {
		t.Errorf("fallback edition = %q/%s, want oldest edition", items[0].CoverURL, items[0].Format)
	}

	// Mit Anzeige-Edition: deren Cover, S3-Spiegel bevorzugt.
	if err := db.Model(&work).Update("display_edition_id", display.ID).Error; err != nil {
		t.Fatalf("set display edition: %v", err)
	}
	items, err = svc.Query(BrowseQuery{SortMode: SortTitle})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if items[0].CoverURL != display.CoverS3Link {
		t.Errorf("cover = %q, want s3 mirror %q", items[0].CoverURL, display.CoverS3Link)
	}
	if items[0].Format != models.FormatPaperback {
		t.Errorf("format = %s, want paperback", items[0].Format)
	}
}

func itemIDs(items []BrowseItem) []uint {
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

func indexOf(items []BrowseItem, id uint) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
