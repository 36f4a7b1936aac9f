// Package override holds curated season and episode counts for known series
package override

import (
	_ "embed"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/depezo/sflix-api/internal/extract"
	"github.com/depezo/sflix-api/internal/models"
)

//go:embed known_series.yaml
var defaultTable []byte

// Entry is the curated shape of one series
type Entry struct {
	Aliases  []string    `yaml:"aliases"`
	Seasons  int         `yaml:"seasons"`
	Episodes map[int]int `yaml:"episodes"`
}

// Table maps series identifiers (and their aliases) to entries
type Table struct {
	Series map[string]Entry `yaml:"series"`

	index map[string]Entry
}

// Default returns the table compiled into the binary
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic("override: embedded table is invalid: " + err.Error())
	}
	return t
}

// Empty returns a table with no entries
func Empty() *Table {
	return &Table{Series: map[string]Entry{}, index: map[string]Entry{}}
}

// Load reads a YAML table from path, or returns Default when path is empty
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read override table %s", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse override table %s", path)
	}
	return t, nil
}

// Parse decodes a YAML table and validates it
func Parse(data []byte) (*Table, error) {
	t := &Table{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	t.index = make(map[string]Entry, len(t.Series))
	for id, e := range t.Series {
		if e.Seasons < 0 {
			return nil, errors.Errorf("series %s: negative season count", id)
		}
		for season, count := range e.Episodes {
			if season < 1 || count < 0 {
				return nil, errors.Errorf("series %s: invalid episode count %d for season %d", id, count, season)
			}
		}
		t.index[id] = e
		for _, alias := range e.Aliases {
			t.index[alias] = e
		}
	}
	return t, nil
}

// Lookup returns the entry for a series identifier or alias
func (t *Table) Lookup(seriesID string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.index[seriesID]
	return e, ok
}

// Len is the number of identifiers, aliases included
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.index)
}

// EpisodeCount returns the curated count for one season
func (t *Table) EpisodeCount(seriesID string, season int) (int, bool) {
	e, ok := t.Lookup(seriesID)
	if !ok || season < 1 || season > e.Seasons {
		return 0, false
	}
	n, ok := e.Episodes[season]
	return n, ok
}

// Apply merges the curated entry into discovered seasons. Missing seasons are
// appended with their curated count; present seasons whose count is below the
// curated one are raised to it. The result is sorted by season number.
func (t *Table) Apply(seriesID string, seasons []models.Season) []models.Season {
	e, ok := t.Lookup(seriesID)
	if !ok {
		return seasons
	}

	pos := make(map[int]int, len(seasons))
	for i, s := range seasons {
		pos[s.SeasonNumber] = i
	}
	for n := 1; n <= e.Seasons; n++ {
		want := e.Episodes[n]
		i, found := pos[n]
		if !found {
			seasons = append(seasons, models.Season{
				SeasonNumber: n,
				SeasonName:   extract.SeasonName(n),
				EpisodeCount: want,
			})
			pos[n] = len(seasons) - 1
			continue
		}
		if seasons[i].EpisodeCount < want {
			seasons[i].EpisodeCount = want
		}
	}
	return extract.SortSeasons(seasons)
}
