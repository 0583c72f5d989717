package services

import (
	"regexp"
	"strings"

	"book-hand/models"
)

// ReleaseClassification ist das Ergebnis der Ereignis-Klassifikation einer
// Ausgabe: Typ, Major-Flag und promotionale Stärke (0-100).
type ReleaseClassification struct {
	Type          models.EventType
	IsMajor       bool
	PromoStrength int
}

// Schlüsselwort-Gruppen der Entscheidungstabelle, geprüft in genau dieser
// Prioritätsreihenfolge.
var (
	promoKeywords = []string{
		"tie-in", "film", "movie", "tv", "series", "adaptation",
		"netflix", "hulu", "hbo", "disney", "prime video",
	}
	revisedKeywords = []string{
		"revised", "expanded", "updated", "corrected",
		"annotated", "illustrated", "unabridged",
	}
	collectorKeywords = []string{
		"special", "collector", "deluxe", "limited", "signed",
		"hardback", "leather",
	}
	reprintKeywords = []string{"new cover", "reprint"}

	anniversaryRe = regexp.MustCompile(`(?i)\banniversary\b|\b\d+(?:st|nd|rd|th)\b`)
)

// ClassifyRelease ordnet einer Ausgabe anhand von Editionsvermerk und
// Kategorien einen Release-Ereignistyp zu. Die Funktion ist total: ohne
// Treffer fällt sie auf MINOR_REPRINT zurück.
func ClassifyRelease(editionStatement string, categories []string) ReleaseClassification {
	statement := strings.ToLower(editionStatement)
	haystack := statement
	for _, c := range categories {
		haystack += " " + strings.ToLower(c)
	}

	switch {
	case containsAny(haystack, promoKeywords):
		return ReleaseClassification{models.EventMajorReissuePromo, true, 85}
	case anniversaryRe.MatchString(statement):
		return ReleaseClassification{models.EventSpecialEdition, true, 70}
	case containsAny(statement, revisedKeywords):
		return ReleaseClassification{models.EventRevisedExpanded, true, 60}
	case containsAny(statement, collectorKeywords):
		return ReleaseClassification{models.EventSpecialEdition, false, 40}
	case containsAny(statement, reprintKeywords):
		return ReleaseClassification{models.EventMinorReprint, false, 10}
	default:
		return ReleaseClassification{models.EventMinorReprint, false, 20}
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// Format-Schlüsselwörter für die Anreicherung unklassifizierter Ausgaben.
var formatKeywords = []struct {
	format   models.EditionFormat
	keywords []string
}{
	{models.FormatAudiobook, []string{"audio", "audiobook", "cd", "narrated"}},
	{models.FormatEbook, []string{"ebook", "e-book", "kindle", "digital"}},
	{models.FormatHardcover, []string{"hardcover", "hardback", "leather"}},
	{models.FormatPaperback, []string{"paperback", "softcover", "mass market", "trade paper"}},
}

// InferFormat rät das Ausgabeformat aus Editionsvermerk und Kategorien.
// Ohne Treffer bleibt es bei unknown.
func InferFormat(editionStatement string, categories []string) models.EditionFormat {
	haystack := strings.ToLower(editionStatement)
	for _, c := range categories {
		haystack += " " + strings.ToLower(c)
	}
	for _, group := range formatKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(haystack, kw) {
				return group.format
			}
		}
	}
	return models.FormatUnknown
}
