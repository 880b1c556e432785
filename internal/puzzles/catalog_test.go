package puzzles

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sample = `
[[challenge]]
id = "pinned"
date = "2026-10-19"
theme = "Pinned"
content = "A grate day."
words = ["great"]
hints = ["very good"]

[[challenge]]
id = "a"
theme = "A"
points = 20
content = "We new it."
words = [" knew "]

[[challenge]]
id = "b"
theme = "B"
content = "By it."
words = ["buy"]
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	p, err := c.ByID("a")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if p.CorrectWords[0] != "knew" {
		t.Errorf("word not trimmed: %q", p.CorrectWords[0])
	}
	if p.PointPerCorrectWord != 20 {
		t.Errorf("points = %d, want 20", p.PointPerCorrectWord)
	}
	if _, err := c.ByID("zzz"); !errors.Is(err, ErrUnknownChallenge) {
		t.Errorf("ByID(zzz) err = %v, want ErrUnknownChallenge", err)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{name: "syntax", toml: `[[challenge]`, want: "decode catalog"},
		{name: "missing id", toml: "[[challenge]]\nwords=[\"a\"]", want: "missing id"},
		{name: "no words", toml: "[[challenge]]\nid=\"x\"", want: "has no words"},
		{name: "blank word", toml: "[[challenge]]\nid=\"x\"\nwords=[\"a\", \" \"]", want: "blank word"},
		{name: "duplicate id", toml: "[[challenge]]\nid=\"x\"\nwords=[\"a\"]\n[[challenge]]\nid=\"x\"\nwords=[\"b\"]", want: "duplicate id"},
		{name: "bad date", toml: "[[challenge]]\nid=\"x\"\ndate=\"tomorrow\"\nwords=[\"a\"]", want: "parse date key"},
		{name: "negative points", toml: "[[challenge]]\nid=\"x\"\npoints=-1\nwords=[\"a\"]", want: "negative points"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Parse() err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestForDate(t *testing.T) {
	c, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	pinnedDay := time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)
	p, err := c.ForDate(pinnedDay, "salt")
	if err != nil || p.ID != "pinned" {
		t.Fatalf("ForDate(pinned) = %q, %v", p.ID, err)
	}

	for i := 1; i < 20; i++ {
		p, err := c.ForDate(pinnedDay.AddDate(0, 0, i), "salt")
		if err != nil {
			t.Fatalf("ForDate: %v", err)
		}
		if p.ID == "pinned" {
			t.Fatal("pinned challenge leaked into rotation")
		}
	}

	empty, _ := Parse(nil)
	if _, err := empty.ForDate(pinnedDay, "salt"); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("empty catalog err = %v", err)
	}
}

func TestForDateOnlyPinned(t *testing.T) {
	c, err := Parse([]byte("[[challenge]]\nid=\"x\"\ndate=\"2026-01-01\"\nwords=[\"a\"]"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	p, err := c.ForDate(time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), "salt")
	if err != nil || p.ID != "x" {
		t.Fatalf("ForDate() = %q, %v, want fallback to x", p.ID, err)
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load embedded: %v", err)
	}
	if c.Len() == 0 {
		t.Fatal("embedded catalog is empty")
	}
	for _, p := range c.All() {
		if len(p.Hints) != len(p.CorrectWords) {
			t.Errorf("%s: %d hints for %d words", p.ID, len(p.Hints), len(p.CorrectWords))
		}
	}

	path := filepath.Join(t.TempDir(), "puzzles.toml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err = Load(path)
	if err != nil || c.Len() != 3 {
		t.Fatalf("Load(file) = %v, %v", c, err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSummarize(t *testing.T) {
	c, _ := Parse([]byte(sample))
	p, _ := c.ByID("pinned")
	s := Summarize(p)
	if s.WordCount != 1 || s.HintCount != 1 || s.Theme != "Pinned" || s.Date != "2026-10-19" {
		t.Fatalf("summary = %+v", s)
	}
}
