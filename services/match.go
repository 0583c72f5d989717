package services

import (
	"regexp"
	"strings"
)

// WorkKey ist die leichtgewichtige Projektion eines Werks, auf der das
// Match-Scoring arbeitet.
type WorkKey struct {
	Title   string
	Authors []string
	ISBN    string
}

// Empirisch gewählte Gewichte des Scoring-Rasters. Keine harte Invariante,
// deshalb benannte Konstanten statt Magic Numbers.
const (
	scoreTitleExact        = 40
	scoreSeriesNumberSame  = 10
	scoreSeriesNumberDiff  = -30
	scoreTitleSubstring    = 20
	scoreAuthorExact       = 30
	scoreAuthorSurname     = 20
	scoreISBNExact         = 20
	scoreISBNPrefix        = 10
	minSubstringTitleLen   = 5
	minSurnameLen          = 3
	minISBNLenForPrefixCmp = 9
)

var isbnCharRe = regexp.MustCompile(`[^0-9Xx]`)

// normalizeISBN reduziert eine ISBN auf Ziffern und das Prüfzeichen X.
func normalizeISBN(isbn string) string {
	return strings.ToUpper(isbnCharRe.ReplaceAllString(isbn, ""))
}

// ScoreMatch berechnet die Ähnlichkeit zweier Werk-Projektionen als Wert in
// [0, 100]. Das Raster ist symmetrisch definiert: ScoreMatch(a, b) ==
// ScoreMatch(b, a).
func ScoreMatch(a, b WorkKey) int {
	score := 0

	// 1. Titelvergleich auf dem serien-bereinigten, normalisierten Titel.
	strippedA, seriesA := ExtractSeries(a.Title)
	strippedB, seriesB := ExtractSeries(b.Title)
	normStrippedA := NormalizeTitle(strippedA)
	normStrippedB := NormalizeTitle(strippedB)

	if normStrippedA != "" && normStrippedA == normStrippedB {
		score += scoreTitleExact
		switch {
		case seriesA != nil && seriesB != nil && *seriesA == *seriesB:
			score += scoreSeriesNumberSame
		case seriesA != nil && seriesB != nil:
			// Gleicher Serientitel, andere Bandnummer: starkes Signal
			// für verschiedene Bücher derselben Reihe.
			score += scoreSeriesNumberDiff
		case seriesA == nil && seriesB == nil:
			// Beide ohne Seriennummer: die Titel stimmen vollständig
			// überein, gleichwertig zum Bandnummern-Treffer. Nur so
			// erreicht ein Werk gegen sich selbst die vollen 100.
			score += scoreSeriesNumberSame
		}
	} else {
		fullA := NormalizeTitle(a.Title)
		fullB := NormalizeTitle(b.Title)
		shorter := fullA
		if len(fullB) < len(shorter) {
			shorter = fullB
		}
		if len(shorter) > minSubstringTitleLen &&
			(strings.Contains(fullA, fullB) || strings.Contains(fullB, fullA)) {
			score += scoreTitleSubstring
		}
	}

	// 2. Primärautor-Vergleich.
	authorA := primaryAuthor(a.Authors)
	authorB := primaryAuthor(b.Authors)
	if authorA != "" && authorA == authorB {
		score += scoreAuthorExact
	} else if authorA != "" && authorB != "" {
		surnameA := lastToken(authorA)
		surnameB := lastToken(authorB)
		if len(surnameA) > minSurnameLen && surnameA == surnameB {
			score += scoreAuthorSurname
		}
	}

	// 3. ISBN-Vergleich.
	isbnA := normalizeISBN(a.ISBN)
	isbnB := normalizeISBN(b.ISBN)
	if isbnA != "" && isbnA == isbnB {
		score += scoreISBNExact
	} else if len(isbnA) >= minISBNLenForPrefixCmp && len(isbnB) >= minISBNLenForPrefixCmp {
		// Prüfziffer ignorieren: Präfixe auf der kürzeren Länge vergleichen.
		n := len(isbnA)
		if len(isbnB) < n {
			n = len(isbnB)
		}
		if isbnA[:n-1] == isbnB[:n-1] {
			score += scoreISBNPrefix
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// primaryAuthor liefert den ersten Autor, getrimmt und kleingeschrieben.
func primaryAuthor(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(authors[0]))
}

// lastToken liefert das letzte whitespace-getrennte Token (den Nachnamen).
func lastToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
