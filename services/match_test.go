package services

import "testing"

func TestScoreMatchIdentity(t *testing.T) {
	key := WorkKey{
		Title:   "The Great Hunt",
		Authors: []string{"Robert Jordan"},
		ISBN:    "9780812517729",
	}
	if got := ScoreMatch(key, key); got != 100 {
		t.Fatalf("ScoreMatch(x, x) = %d, want 100", got)
	}
}

func TestScoreMatchSymmetry(t *testing.T) {
	keys := []WorkKey{
		{Title: "The Great Hunt", Authors: []string{"Robert Jordan"}, ISBN: "9780812517729"},
		{Title: "Great Hunt, The", Authors: []string{"Robert Jordan"}},
		{Title: "Great Hunt Book 2", Authors: []string{"R. Jordan"}, ISBN: "0812517725"},
		{Title: "Dune", Authors: []string{"Frank Herbert"}, ISBN: "9780441172719"},
		{Title: "A Wizard of Earthsea", Authors: []string{"Ursula K. Le Guin"}},
		{Title: "", Authors: nil, ISBN: ""},
	}
	for i := range keys {
		for j := range keys {
			ab := ScoreMatch(keys[i], keys[j])
			ba := ScoreMatch(keys[j], keys[i])
			if ab != ba {
				t.Errorf("asymmetric score for (%d, %d): %d vs %d", i, j, ab, ba)
			}
		}
	}
}

func TestScoreMatchDisjoint(t *testing.T) {
	a := WorkKey{Title: "The Great Hunt", Authors: []string{"Robert Jordan"}, ISBN: "9780812517729"}
	b := WorkKey{Title: "Pride and Prejudice", Authors: []string{"Jane Austen"}, ISBN: "9780141439518"}
	if got := ScoreMatch(a, b); got > 20 {
		t.Fatalf("disjoint works scored %d, want <= 20", got)
	}
}

func TestScoreMatchInvertedArticle(t *testing.T) {
	a := WorkKey{Title: "The Great Hunt", Authors: []string{"Robert Jordan"}}
	b := WorkKey{Title: "Great Hunt, The", Authors: []string{"Robert Jordan"}}
	// Titel exakt (+40) und Autor exakt (+30): Duplikat-Schwellwert erreicht.
	if got := ScoreMatch(a, b); got < 70 {
		t.Fatalf("ScoreMatch = %d, want >= 70", got)
	}
}

func TestScoreMatchSeriesNumberConflict(t *testing.T) {
	a := WorkKey{Title: "Great Hunt Book 2", Authors: []string{"Robert Jordan"}}
	b := WorkKey{Title: "Great Hunt Book 3", Authors: []string{"Robert Jordan"}}
	// +40 Titel, -30 Bandkonflikt, +30 Autor = 40: deutlich unter dem
	// Schwellwert, verschiedene Bände derselben Reihe bleiben getrennt.
	if got := ScoreMatch(a, b); got >= 70 {
		t.Fatalf("conflicting series numbers scored %d, want < 70", got)
	}
}

func TestScoreMatchSeriesNumberAgreement(t *testing.T) {
	a := WorkKey{Title: "Great Hunt Book 2", Authors: []string{"Robert Jordan"}}
	b := WorkKey{Title: "The Great Hunt Book 2", Authors: []string{"Robert Jordan"}}
	// +40 Titel, +10 Bandnummer, +30 Autor = 80.
	if got := ScoreMatch(a, b); got != 80 {
		t.Fatalf("ScoreMatch = %d, want 80", got)
	}
}

func TestScoreMatchSubstringTitle(t *testing.T) {
	a := WorkKey{Title: "Dune Messiah", Authors: []string{"Frank Herbert"}}
	b := WorkKey{Title: "Dune Messiah: A Novel", Authors: []string{"Frank Herbert"}}
	// Kein exakter Treffer wegen des Zusatzes, aber Substring (+20) und
	// Autor exakt (+30).
	if got := ScoreMatch(a, b); got != 50 {
		t.Fatalf("ScoreMatch = %d, want 50", got)
	}
}

func TestScoreMatchSurnameFallback(t *testing.T) {
	a := WorkKey{Title: "The Dispossessed", Authors: []string{"Ursula K. Le Guin"}}
	b := WorkKey{Title: "The Dispossessed", Authors: []string{"U. Le Guin"}}
	// Titel exakt (+40, +10 ohne Serienkonflikt), Nachname "guin" gleich
	// und > 3 Zeichen (+20).
	if got := ScoreMatch(a, b); got != 70 {
		t.Fatalf("ScoreMatch = %d, want 70", got)
	}
}

func TestScoreMatchISBNPrefix(t *testing.T) {
	a := WorkKey{Title: "Dune", Authors: []string{"Frank Herbert"}, ISBN: "9780441172719"}
	b := WorkKey{Title: "Dune", Authors: []string{"Frank Herbert"}, ISBN: "978-0-441-17271-X"}
	// Gleiche Präfixe bis auf die Prüfziffer: +40 +10 +30 +10 = 90.
	if got := ScoreMatch(a, b); got != 90 {
		t.Fatalf("ScoreMatch = %d, want 90", got)
	}
}

func TestScoreMatchClampsAtZero(t *testing.T) {
	a := WorkKey{Title: "Saga Book 1", Authors: []string{"X Y"}}
	b := WorkKey{Title: "Saga Book 9", Authors: []string{"Q R"}}
	// +40 Titel, -30 Bandkonflikt, kein Autorentreffer: Ergebnis bleibt >= 0.
	if got := ScoreMatch(a, b); got < 0 || got > 100 {
		t.Fatalf("score %d outside [0, 100]", got)
	}
}

func TestNormalizeISBN(t *testing.T) {
	cases := map[string]string{
		"978-0-441-17271-9": "9780441172719",
		"0-8044-2957-x":     "080442957X",
		"ISBN 0812517725":   "0812517725",
		"":                  "",
	}
	for in, want := range cases {
		if got := normalizeISBN(in); got != want {
			t.Errorf("normalizeISBN(%q) = %q, want %q", in, got, want)
		}
	}
}
