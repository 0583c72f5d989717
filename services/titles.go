package services

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Artikel, die am Titelanfang entfernt werden (Englisch plus die gängigen
// französischen, spanischen und deutschen Äquivalente).
var leadingArticles = []string{
	"the", "a", "an",
	"le", "la", "les", "un", "une",
	"el", "los", "las",
	"der", "die", "das", "ein", "eine",
}

var (
	titlePunctRe      = regexp.MustCompile(`[^\p{L}\p{N}\s-]`)
	titleWhitespaceRe = regexp.MustCompile(`\s+`)

	// Bibliothekarische Invertierung: "Great Hunt, The".
	trailingArticleRe = regexp.MustCompile(`,\s*(?:` + strings.Join(leadingArticles, "|") + `)\s*$`)

	// NFD-Zerlegung plus Entfernen der kombinierenden Zeichen entfernt
	// Diakritika ("Éowyn" -> "Eowyn").
	diacriticFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeTitle bildet den Clustering- und Vergleichsschlüssel eines Titels:
// Kleinschreibung, Diakritika weg, ein führender Artikel weg, Interpunktion
// (außer Bindestrichen) weg, Whitespace kollabiert.
func NormalizeTitle(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	if s == "" {
		return ""
	}

	if folded, _, err := transform.String(diacriticFold, s); err == nil {
		s = folded
	}

	s = trailingArticleRe.ReplaceAllString(s, "")
	for _, article := range leadingArticles {
		if strings.HasPrefix(s, article+" ") {
			s = s[len(article)+1:]
			break
		}
	}

	s = titlePunctRe.ReplaceAllString(s, "")
	s = titleWhitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// seriesPatterns werden in dieser Reihenfolge gegen den rohen Titel geprüft;
// der erste Treffer gewinnt.
var seriesPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bbook\s+(\d+)\b`),
	regexp.MustCompile(`#\s*(\d+)\b`),
	regexp.MustCompile(`(?i)\bvol(?:ume|\.)?\s+(\d+)\b`),
	regexp.MustCompile(`(?i)\bpart\s+(\d+)\b`),
	regexp.MustCompile(`\(\s*(\d+)\s*\)`),
}

// ExtractSeries sucht eine eingebettete Seriennummer im rohen Titel
// ("The Great Hunt Book 2", "Dune #3", "Foundation (1)") und liefert den
// Titel ohne das gefundene Fragment plus die Nummer. Ohne Treffer kommt der
// Originaltitel mit nil zurück.
func ExtractSeries(title string) (string, *int) {
	for _, pattern := range seriesPatterns {
		match := pattern.FindStringSubmatchIndex(title)
		if match == nil {
			continue
		}
		num, err := strconv.Atoi(title[match[2]:match[3]])
		if err != nil {
			continue
		}

		stripped := title[:match[0]] + title[match[1]:]
		stripped = titleWhitespaceRe.ReplaceAllString(stripped, " ")
		stripped = strings.Trim(stripped, " \t,;:-")
		return stripped, &num
	}
	return title, nil
}
