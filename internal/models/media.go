// Package models contains the catalog records returned by the extraction engine
package models

// MediaType discriminates movies from series in mixed listings
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
)

// MediaCard is one catalog tile from a listing page
type MediaCard struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Poster  string `json:"poster"`
	Quality string `json:"quality"`
	Rating  string `json:"rating"`
	Year    string `json:"year"`
	Link    string `json:"link"`
}

// SearchResult is a card tagged with its media type
type SearchResult struct {
	MediaCard
	Type MediaType `json:"type"`
}

// CastMember is a credited person on a title page
type CastMember struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// MovieDetail holds the fields scraped from a title page
type MovieDetail struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Overview string       `json:"overview"`
	Released string       `json:"released"`
	Runtime  string       `json:"runtime"`
	Trailer  string       `json:"trailer"`
	Genres   []string     `json:"genres"`
	Cast     []CastMember `json:"cast"`
	Quality  string       `json:"quality"`
	Rating   string       `json:"rating"`
	Poster   string       `json:"poster"`
	Banner   string       `json:"banner"`
}

// SeriesDetail extends MovieDetail with the season list and related titles
type SeriesDetail struct {
	MovieDetail
	Seasons         []Season    `json:"seasons"`
	Recommendations []MediaCard `json:"recommendations"`
}

// CastInfo describes a person page
type CastInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Photo       string `json:"photo"`
	Bio         string `json:"bio"`
	BirthDate   string `json:"birthDate"`
	Nationality string `json:"nationality"`
}

// CastWork is one credit on a person page
type CastWork struct {
	SearchResult
	Role string `json:"role,omitempty"`
}

// CastPage is a paginated slice of a person's works
type CastPage struct {
	CastInfo   CastInfo   `json:"castInfo"`
	Works      []CastWork `json:"works"`
	TotalWorks int        `json:"totalWorks"`
	Page       int        `json:"page"`
	PerPage    int        `json:"perPage"`
}
