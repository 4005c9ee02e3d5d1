// Package script loads animation scripts from YAML and builds the phrase
// hierarchy they describe. A script is a flat list of timed phrases with
// optional per-level effect selection; word and character timing is always
// derived, never authored.
package script

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/kinetext/hierarchy"
	"github.com/lixenwraith/kinetext/lifecycle"
)

// ErrEmptyScript reports a script with no phrases
var ErrEmptyScript = errors.New("script: no phrases")

// Effects selects the renderer for each hierarchy level. Empty fields take
// the defaults.
type Effects struct {
	Phrase string `yaml:"phrase,omitempty"`
	Word   string `yaml:"word,omitempty"`
	Char   string `yaml:"char,omitempty"`
}

// Phrase is one authored script entry
type Phrase struct {
	ID      string  `yaml:"id,omitempty"`
	Text    string  `yaml:"text"`
	StartMs int64   `yaml:"start_ms"`
	EndMs   int64   `yaml:"end_ms"`
	HeadMs  int64   `yaml:"head_ms,omitempty"`
	TailMs  int64   `yaml:"tail_ms,omitempty"`
	X       float64 `yaml:"x,omitempty"`
	Y       float64 `yaml:"y,omitempty"`
	Effects Effects `yaml:"effects,omitempty"`
}

// Script is a full parsed script document
type Script struct {
	Title   string   `yaml:"title,omitempty"`
	Phrases []Phrase `yaml:"phrases"`
}

// Parse decodes a YAML script document and validates it
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("script: parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses a script file
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: read %q: %w", path, err)
	}
	return Parse(data)
}

// Validate checks phrase timing and assigns sequential IDs to phrases
// that did not author one. Overlapping phrases are legal; inverted or
// negative windows are not.
func (s *Script) Validate() error {
	if len(s.Phrases) == 0 {
		return ErrEmptyScript
	}
	seen := make(map[string]int, len(s.Phrases))
	for i := range s.Phrases {
		p := &s.Phrases[i]
		if p.Text == "" {
			return fmt.Errorf("script: phrase %d has no text", i)
		}
		if p.EndMs <= p.StartMs {
			return fmt.Errorf("script: phrase %d window inverted: [%d,%d]", i, p.StartMs, p.EndMs)
		}
		if p.StartMs < 0 || p.HeadMs < 0 || p.TailMs < 0 {
			return fmt.Errorf("script: phrase %d has negative timing", i)
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("p%d", i)
		}
		if prev, dup := seen[p.ID]; dup {
			return fmt.Errorf("script: duplicate phrase id %q (entries %d and %d)", p.ID, prev, i)
		}
		seen[p.ID] = i
	}
	return nil
}

// Range returns the phrase's full time range
func (p Phrase) Range() lifecycle.TimeRange {
	return lifecycle.TimeRange{
		StartMs: p.StartMs,
		EndMs:   p.EndMs,
		HeadMs:  p.HeadMs,
		TailMs:  p.TailMs,
	}
}

// BuildTree constructs the phrase hierarchy for every phrase in the
// script, deriving word and character sub-ranges
func (s *Script) BuildTree() (*hierarchy.Tree, error) {
	tree := hierarchy.NewTree()
	for i := range s.Phrases {
		p := &s.Phrases[i]
		if err := tree.Build(p.ID, p.Text, p.Range()); err != nil {
			return nil, fmt.Errorf("script: phrase %q: %w", p.ID, err)
		}
	}
	return tree, nil
}

// TimelineItem is one phrase in playback order
type TimelineItem struct {
	PhraseID string
	EnterMs  int64
	LeaveMs  int64
}

// Timeline returns the phrases sorted by lead-in start, ties broken by
// phrase ID. Used for seeking and the HUD's upcoming-phrase readout.
func (s *Script) Timeline() []TimelineItem {
	items := make([]TimelineItem, 0, len(s.Phrases))
	for i := range s.Phrases {
		r := s.Phrases[i].Range()
		items = append(items, TimelineItem{
			PhraseID: s.Phrases[i].ID,
			EnterMs:  r.EnterMs(),
			LeaveMs:  r.LeaveMs(),
		})
	}
	sort.Slice(items, func(a, b int) bool {
		if items[a].EnterMs != items[b].EnterMs {
			return items[a].EnterMs < items[b].EnterMs
		}
		return items[a].PhraseID < items[b].PhraseID
	})
	return items
}

// DurationMs returns the timeline position where the last phrase's
// lead-out ends
func (s *Script) DurationMs() int64 {
	var max int64
	for i := range s.Phrases {
		if leave := s.Phrases[i].Range().LeaveMs(); leave > max {
			max = leave
		}
	}
	return max
}
