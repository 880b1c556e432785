// internal/puzzles/catalog.go
//
// Puzzle catalog for the daily homophone challenges.
//
// Responsibilities:
//   - Load challenges from a TOML file (PUZZLES_FILE) or the embedded default.
//   - Validate them (unique ids, at least one word, no blank words).
//   - Resolve a challenge by id or by calendar day.
//
// Day resolution:
//  1. A challenge whose "date" equals the day's key wins.
//  2. Otherwise the undated challenges rotate by daily.ChallengeIndex.
//
// File format:
//
//	[[challenge]]
//	id = "weather-watch"
//	date = "2026-10-19"   # optional
//	theme = "Weather Watch"
//	difficulty = "easy"   # optional
//	points = 10           # optional, base points per word
//	content = "..."
//	words = ["weather", "great"]
//	hints = ["...", "..."]

package puzzles

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"

	"github.com/robalobadob/homophones/assets"
	"github.com/robalobadob/homophones/internal/daily"
	"github.com/robalobadob/homophones/internal/game"
)

var (
	// ErrUnknownChallenge is returned when no challenge has the requested id.
	ErrUnknownChallenge = errors.New("puzzles: unknown challenge")
	// ErrEmptyCatalog is returned when the catalog has nothing to serve.
	ErrEmptyCatalog = errors.New("puzzles: catalog is empty")
)

type catalogFile struct {
	Challenges []entry `toml:"challenge"`
}

type entry struct {
	ID         string   `toml:"id"`
	Date       string   `toml:"date"`
	Theme      string   `toml:"theme"`
	Difficulty string   `toml:"difficulty"`
	Points     int      `toml:"points"`
	Content    string   `toml:"content"`
	Words      []string `toml:"words"`
	Hints      []string `toml:"hints"`
}

// Catalog is an immutable, validated set of challenges.
type Catalog struct {
	list     []game.Puzzle
	byID     map[string]int
	byDate   map[string]int
	rotation []int // indexes of undated challenges, in file order
}

// Load reads the catalog from path, or from the embedded default when
// path is empty.
func Load(path string) (*Catalog, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = assets.Puzzles()
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		byID:   make(map[string]int, len(f.Challenges)),
		byDate: make(map[string]int),
	}
	for i, e := range f.Challenges {
		p, err := e.puzzle()
		if err != nil {
			return nil, fmt.Errorf("challenge %d: %w", i+1, err)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("challenge %d: duplicate id %q", i+1, p.ID)
		}
		idx := len(c.list)
		c.list = append(c.list, p)
		c.byID[p.ID] = idx
		if p.Date != "" {
			if _, dup := c.byDate[p.Date]; dup {
				return nil, fmt.Errorf("challenge %q: date %s already taken", p.ID, p.Date)
			}
			c.byDate[p.Date] = idx
		} else {
			c.rotation = append(c.rotation, idx)
		}
	}
	return c, nil
}

func (e entry) puzzle() (game.Puzzle, error) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return game.Puzzle{}, errors.New("missing id")
	}
	words := lo.Map(e.Words, func(w string, _ int) string { return strings.TrimSpace(w) })
	if len(words) == 0 {
		return game.Puzzle{}, fmt.Errorf("%q has no words", id)
	}
	if lo.Contains(words, "") {
		return game.Puzzle{}, fmt.Errorf("%q has a blank word", id)
	}
	if e.Points < 0 {
		return game.Puzzle{}, fmt.Errorf("%q has negative points", id)
	}
	date := strings.TrimSpace(e.Date)
	if date != "" {
		if _, err := daily.ParseDateKey(date); err != nil {
			return game.Puzzle{}, fmt.Errorf("%q: %w", id, err)
		}
	}
	return game.Puzzle{
		ID:                  id,
		ThemeName:           strings.TrimSpace(e.Theme),
		Content:             strings.TrimSpace(e.Content),
		CorrectWords:        words,
		Hints:               e.Hints,
		PointPerCorrectWord: e.Points,
		Difficulty:          strings.TrimSpace(e.Difficulty),
		Date:                date,
	}, nil
}

// Len reports the number of challenges.
func (c *Catalog) Len() int { return len(c.list) }

// All returns every challenge in file order.
func (c *Catalog) All() []game.Puzzle {
	return append([]game.Puzzle(nil), c.list...)
}

// ByID looks up a challenge.
func (c *Catalog) ByID(id string) (game.Puzzle, error) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return game.Puzzle{}, fmt.Errorf("%w: %s", ErrUnknownChallenge, id)
	}
	return c.list[idx], nil
}

// ForDate returns the challenge for the UTC day containing t.
func (c *Catalog) ForDate(t time.Time, salt string) (game.Puzzle, error) {
	if len(c.list) == 0 {
		return game.Puzzle{}, ErrEmptyCatalog
	}
	if idx, ok := c.byDate[daily.DateKey(t)]; ok {
		return c.list[idx], nil
	}
	pool := c.rotation
	if len(pool) == 0 {
		pool = lo.Range(len(c.list))
	}
	return c.list[pool[daily.ChallengeIndex(t, salt, len(pool))]], nil
}

// Summary is the public view of a challenge: no answers, no hint text.
type Summary struct {
	ID         string `json:"id"`
	Theme      string `json:"theme"`
	Content    string `json:"content"`
	Difficulty string `json:"difficulty,omitempty"`
	Date       string `json:"date,omitempty"`
	WordCount  int    `json:"wordCount"`
	HintCount  int    `json:"hintCount"`
}

// Summarize strips the answers from p.
func Summarize(p game.Puzzle) Summary {
	return Summary{
		ID:         p.ID,
		Theme:      p.ThemeName,
		Content:    p.Content,
		Difficulty: p.Difficulty,
		Date:       p.Date,
		WordCount:  len(p.CorrectWords),
		HintCount:  len(p.Hints),
	}
}
