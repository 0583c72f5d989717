package openlibrary

// SearchResponse ist die Top-Level-Struktur der Open Library Search-Antwort.
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

// Doc repräsentiert ein einzelnes Suchergebnis.
type Doc struct {
	Key              string   `json:"key"` // z.B. "/works/OL45883W"
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	Language         []string `json:"language"`
	Subject          []string `json:"subject"`
	EditionCount     int      `json:"edition_count"`
	CoverI           int      `json:"cover_i"`
	NumberOfPages    int      `json:"number_of_pages_median"`
}
