package services

import (
	"testing"

	"book-hand/models"
)

func TestClassifyRelease(t *testing.T) {
	cases := []struct {
		name       string
		statement  string
		categories []string
		wantType   models.EventType
		wantMajor  bool
		wantPromo  int
	}{
		{
			name:      "movie tie-in",
			statement: "Movie Tie-In Edition",
			wantType:  models.EventMajorReissuePromo, wantMajor: true, wantPromo: 85,
		},
		{
			name:       "streaming platform in categories",
			statement:  "",
			categories: []string{"Fiction", "Netflix Series"},
			wantType:   models.EventMajorReissuePromo, wantMajor: true, wantPromo: 85,
		},
		{
			name:      "anniversary",
			statement: "25th Anniversary Edition",
			wantType:  models.EventSpecialEdition, wantMajor: true, wantPromo: 70,
		},
		{
			name:      "bare ordinal",
			statement: "10th edition",
			wantType:  models.EventSpecialEdition, wantMajor: true, wantPromo: 70,
		},
		{
			name:      "revised",
			statement: "Revised and Expanded",
			wantType:  models.EventRevisedExpanded, wantMajor: true, wantPromo: 60,
		},
		{
			name:      "annotated",
			statement: "Annotated edition",
			wantType:  models.EventRevisedExpanded, wantMajor: true, wantPromo: 60,
		},
		{
			name:      "collector",
			statement: "Deluxe Collector's Edition",
			wantType:  models.EventSpecialEdition, wantMajor: false, wantPromo: 40,
		},
		{
			name:      "leather bound",
			statement: "Leather Bound",
			wantType:  models.EventSpecialEdition, wantMajor: false, wantPromo: 40,
		},
		{
			name:      "new cover",
			statement: "Reissue with new cover",
			wantType:  models.EventMinorReprint, wantMajor: false, wantPromo: 10,
		},
		{
			name:      "empty statement",
			statement: "",
			wantType:  models.EventMinorReprint, wantMajor: false, wantPromo: 20,
		},
		{
			name:      "unrecognized statement",
			statement: "First thus",
			wantType:  models.EventMinorReprint, wantMajor: false, wantPromo: 20,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyRelease(tc.statement, tc.categories)
			if got.Type != tc.wantType {
				t.Errorf("type = %s, want %s", got.Type, tc.wantType)
			}
			if got.IsMajor != tc.wantMajor {
				t.Errorf("isMajor = %v, want %v", got.IsMajor, tc.wantMajor)
			}
			if got.PromoStrength != tc.wantPromo {
				t.Errorf("promoStrength = %d, want %d", got.PromoStrength, tc.wantPromo)
			}
		})
	}
}

func TestClassifyReleasePriorityOrder(t *testing.T) {
	// Tie-in schlägt Anniversary, wenn beides im Vermerk steht.
	got := ClassifyRelease("20th Anniversary Movie Tie-In", nil)
	if got.Type != models.EventMajorReissuePromo {
		t.Fatalf("expected MAJOR_REISSUE_PROMO to win, got %s", got.Type)
	}

	// Anniversary schlägt Collector.
	got = ClassifyRelease("10th Anniversary Deluxe Edition", nil)
	if got.Type != models.EventSpecialEdition || !got.IsMajor || got.PromoStrength != 70 {
		t.Fatalf("expected major SPECIAL_EDITION (70), got %+v", got)
	}
}

func TestInferFormat(t *testing.T) {
	cases := []struct {
		statement  string
		categories []string
		want       models.EditionFormat
	}{
		{"Mass Market Paperback", nil, models.FormatPaperback},
		{"Leather Bound Hardcover", nil, models.FormatHardcover},
		{"Kindle Edition", nil, models.FormatEbook},
		{"", []string{"Audiobook"}, models.FormatAudiobook},
		{"First printing", nil, models.FormatUnknown},
	}
	for _, tc := range cases {
		if got := InferFormat(tc.statement, tc.categories); got != tc.want {
			t.Errorf("InferFormat(%q, %v) = %s, want %s", tc.statement, tc.categories, got, tc.want)
		}
	}
}
