package replay

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptySlate is returned when a slate holds no games.
var ErrEmptySlate = errors.New("slate has no games")

// Side is the situational input of one team in a slate entry.
type Side struct {
	PlayedYesterday bool     `yaml:"played_yesterday" json:"played_yesterday"`
	Record          string   `yaml:"record" json:"record,omitempty"`
	Revenge         bool     `yaml:"revenge" json:"revenge"`
	Absentees       []string `yaml:"absentees" json:"absentees"`
	InjuryPenalty   *float64 `yaml:"injury_penalty" json:"injury_penalty,omitempty"`
}

// Game is one slate entry. ObservedTotal marks a finished game to reconcile.
type Game struct {
	Date          string   `yaml:"date" json:"date,omitempty"`
	HomeTeam      string   `yaml:"home" json:"home_team"`
	AwayTeam      string   `yaml:"away" json:"away_team"`
	CasinoLine    float64  `yaml:"line" json:"casino_line"`
	SpreadLine    *float64 `yaml:"spread" json:"spread_line,omitempty"`
	Referee       string   `yaml:"referee" json:"referee,omitempty"`
	Home          Side     `yaml:"home_side" json:"home"`
	Away          Side     `yaml:"away_side" json:"away"`
	ObservedTotal *float64 `yaml:"observed_total" json:"observed_total,omitempty"`
	DryRun        bool     `yaml:"-" json:"dry_run"`
}

// Slate is a YAML document listing games.
type Slate struct {
	Games []Game `yaml:"games"`
}

// LoadSlate reads and validates a slate file.
func LoadSlate(path string) (*Slate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slate: %w", err)
	}
	return ParseSlate(data)
}

// ParseSlate decodes a slate document.
func ParseSlate(data []byte) (*Slate, error) {
	var s Slate
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse slate: %w", err)
	}
	if len(s.Games) == 0 {
		return nil, ErrEmptySlate
	}
	for i, g := range s.Games {
		if strings.TrimSpace(g.HomeTeam) == "" || strings.TrimSpace(g.AwayTeam) == "" {
			return nil, fmt.Errorf("game %d: home and away are required", i+1)
		}
		if g.ObservedTotal != nil && *g.ObservedTotal < 0 {
			return nil, fmt.Errorf("game %d: observed_total must not be negative", i+1)
		}
	}
	return &s, nil
}
