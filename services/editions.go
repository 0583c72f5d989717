package services

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"book-hand/models"
)

// ErrWorkNotFound signalisiert eine Editions-Anlage für ein unbekanntes Werk.
var ErrWorkNotFound = errors.New("work not found")

// AddEditionInput sind die Felder der manuellen Editions-Anlage über die
// Admin-Oberfläche.
type AddEditionInput struct {
	Format              models.EditionFormat `json:"format"`
	PublicationDateText string               `json:"publication_date,omitempty"`
	Language            string               `json:"language,omitempty"`
	Market              string               `json:"market,omitempty"`
	ISBN10              string               `json:"isbn10,omitempty"`
	ISBN13              string               `json:"isbn13,omitempty"`
	EditionStatement    string               `json:"edition_statement,omitempty"`
	CoverURL            string               `json:"cover_url,omitempty"`
	PageCount           int                  `json:"page_count,omitempty"`
	Categories          []string             `json:"categories,omitempty"`
	EventType           models.EventType     `json:"event_type,omitempty"`
	PromoStrength       int                  `json:"promo_strength,omitempty"`
}

// AddEdition legt eine handgepflegte Edition für ein bestehendes Werk an,
// erzeugt bei bekanntem Datum das zugehörige Release-Ereignis (Typ entweder
// vom Aufrufer vorgegeben oder aus dem Editionsvermerk klassifiziert) und
// rechnet die abgeleiteten Daten des Werks neu.
func AddEdition(db *gorm.DB, log *zap.Logger, workID uint, input AddEditionInput) (*models.Edition, error) {
	var work models.Work
	if err := db.First(&work, workID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkNotFound
		}
		return nil, err
	}

	// Eingaben vollständig prüfen, bevor irgendetwas persistiert wird.
	if input.EventType != "" && !input.EventType.Valid() {
		return nil, fmt.Errorf("unknown event type %q", input.EventType)
	}

	format := input.Format
	if format == "" || format == models.FormatUnknown {
		format = InferFormat(input.EditionStatement, input.Categories)
	}

	pubDate := ParsePublicationDate(input.PublicationDateText)

	edition := models.Edition{
		WorkID:           workID,
		Format:           format,
		PublicationDate:  pubDate,
		Language:         input.Language,
		Market:           input.Market,
		ISBN10:           normalizeISBN(input.ISBN10),
		ISBN13:           normalizeISBN(input.ISBN13),
		EditionStatement: input.EditionStatement,
		PageCount:        input.PageCount,
		Categories:       models.JoinList(input.Categories),
		CoverURL:         input.CoverURL,
		IsManual:         true,
	}
	if err := db.Create(&edition).Error; err != nil {
		return nil, fmt.Errorf("create edition: %w", err)
	}

	if pubDate != nil {
		var event models.ReleaseEvent
		if input.EventType != "" {
			event = models.ReleaseEvent{
				EditionID:     edition.ID,
				EventDate:     *pubDate,
				EventType:     input.EventType,
				IsMajor:       input.EventType.DefaultMajor(),
				PromoStrength: input.PromoStrength,
				Market:        input.Market,
			}
		} else {
			classification := ClassifyRelease(input.EditionStatement, input.Categories)
			event = models.ReleaseEvent{
				EditionID:     edition.ID,
				EventDate:     *pubDate,
				EventType:     classification.Type,
				IsMajor:       classification.IsMajor,
				PromoStrength: classification.PromoStrength,
				Market:        input.Market,
			}
		}
		if event.PromoStrength > 100 {
			event.PromoStrength = 100
		}
		if event.PromoStrength < 0 {
			event.PromoStrength = 0
		}
		if err := db.Create(&event).Error; err != nil {
			return nil, fmt.Errorf("create release event: %w", err)
		}
	}

	if err := RecomputeWorkDates(db, workID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("recompute dates: %w", err)
	}

	log.Info("Edition manuell angelegt",
		zap.Uint("work_id", workID),
		zap.Uint("edition_id", edition.ID),
		zap.String("format", string(edition.Format)))
	return &edition, nil
}
