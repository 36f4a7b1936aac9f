package models

// Season is one season of a series. Episodes is only populated by the
// combined seasons-and-episodes lookup.
type Season struct {
	SeasonNumber int       `json:"seasonNumber"`
	SeasonName   string    `json:"seasonName"`
	EpisodeCount int       `json:"episodeCount"`
	Episodes     []Episode `json:"episodes,omitempty"`
}

// Episode is one row of a season's episode list
type Episode struct {
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	Overview      string `json:"overview"`
	Duration      string `json:"duration"`
	AirDate       string `json:"airDate"`
	Thumbnail     string `json:"thumbnail"`
	URL           string `json:"url"`
}

// ServerEntry is a selectable streaming server for an episode or movie.
// An entry is valid only when Name and ID are both set; (Name, ID) is its identity.
type ServerEntry struct {
	Name     string `json:"name"`
	ID       string `json:"id"`
	Link     string `json:"link"`
	Type     string `json:"type"`
	Element  string `json:"element"`
	IsActive bool   `json:"isActive"`
}

// ServerKey is the (name, id) pair servers are deduplicated by
type ServerKey struct {
	Name string
	ID   string
}

// Key returns the identity used for deduplication
func (s ServerEntry) Key() ServerKey {
	return ServerKey{Name: s.Name, ID: s.ID}
}

// EpisodeServers is the server listing for one episode
type EpisodeServers struct {
	SeriesID      string        `json:"seriesId"`
	SeasonNumber  int           `json:"seasonNumber"`
	EpisodeNumber int           `json:"episodeNumber"`
	Servers       []ServerEntry `json:"servers"`
	Iframe        string        `json:"iframe"`
	Diagnostics   *Diagnostics  `json:"-"`
}

// MovieServers is the server listing for a movie
type MovieServers struct {
	MovieID     string        `json:"movieId"`
	Servers     []ServerEntry `json:"servers"`
	Iframe      string        `json:"iframe"`
	Diagnostics *Diagnostics  `json:"-"`
}

// ContainerDump records what a known server container looked like on the page
type ContainerDump struct {
	Selector string `json:"selector"`
	Present  bool   `json:"present"`
	Length   int    `json:"length"`
	Preview  string `json:"preview"`
}

// Diagnostics is internal troubleshooting data gathered during extraction.
// It is logged, never sent to clients.
type Diagnostics struct {
	URL            string          `json:"url"`
	SelectorCounts map[string]int  `json:"selectorCounts"`
	Containers     []ContainerDump `json:"containers"`
	Snapshot       string          `json:"snapshot"`
	Errors         []string        `json:"errors"`
}

// AddError appends a step failure to the diagnostics
func (d *Diagnostics) AddError(step string, err error) {
	if d == nil || err == nil {
		return
	}
	d.Errors = append(d.Errors, step+": "+err.Error())
}
