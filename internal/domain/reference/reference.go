// Package reference holds the static league dataset: team ratings, quarter
// distributions, star tables and team aliases. The dataset is embedded and
// parsed once; lookups are read-only and safe for concurrent use.
package reference

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/okian/hoopline/internal/domain/model"
)

//go:embed teams.yaml
var embeddedDataset []byte

// Elite is one entry of the elite star table.
type Elite struct {
	Key      string   `yaml:"key"`
	Points   float64  `yaml:"points"`
	Rebounds float64  `yaml:"rebounds"`
	Usage    float64  `yaml:"usage"`
	Impact   *float64 `yaml:"impact,omitempty"` // fixed impact overrides the formula
}

// Team identifies a franchise.
type Team struct {
	Name string `json:"name"`
	City string `json:"city"`
}

type profileDoc struct {
	Off      float64    `yaml:"off"`
	Def      float64    `yaml:"def"`
	Pace     float64    `yaml:"pace"`
	Quarters [4]float64 `yaml:"quarters"`
}

type teamDoc struct {
	Name       string   `yaml:"name"`
	City       string   `yaml:"city"`
	Aliases    []string `yaml:"aliases"`
	profileDoc `yaml:",inline"`
}

type datasetDoc struct {
	LeagueAverage  profileDoc `yaml:"league_average"`
	AltitudeVenues []string   `yaml:"altitude_venues"`
	Teams          []teamDoc  `yaml:"teams"`
	Elite          []Elite    `yaml:"elite"`
	KeyStarters    []string   `yaml:"key_starters"`
}

// Table is the parsed dataset.
type Table struct {
	teams       []Team
	profiles    map[string]model.TeamStatProfile
	aliases     map[string]string
	average     profileDoc
	altitude    map[string]bool
	elite       []Elite
	keyStarters []string
}

var (
	defaultOnce  sync.Once //nolint:gochecknoglobals // embedded dataset parsed once
	defaultTable *Table    //nolint:gochecknoglobals // embedded dataset parsed once
)

// Default returns the embedded dataset. It panics if the embedded file is
// invalid, which can only happen with a broken build.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(embeddedDataset)
		if err != nil {
			panic(fmt.Sprintf("reference: embedded dataset: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// Parse builds a Table from a YAML document.
func Parse(data []byte) (*Table, error) {
	var doc datasetDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	if len(doc.Teams) == 0 {
		return nil, fmt.Errorf("%w: no teams", ErrInvalidDataset)
	}

	t := &Table{
		profiles:    make(map[string]model.TeamStatProfile, len(doc.Teams)),
		aliases:     make(map[string]string, len(doc.Teams)*3),
		average:     doc.LeagueAverage,
		altitude:    make(map[string]bool, len(doc.AltitudeVenues)),
		elite:       doc.Elite,
		keyStarters: doc.KeyStarters,
	}
	if t.average.Quarters == [4]float64{} {
		t.average.Quarters = model.EvenQuarters()
	}

	for _, td := range doc.Teams {
		if td.Name == "" {
			return nil, fmt.Errorf("%w: team without a name", ErrInvalidDataset)
		}
		if _, dup := t.profiles[td.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate team %q", ErrInvalidDataset, td.Name)
		}
		p := model.TeamStatProfile{
			Team:                td.Name,
			OffRating:           td.Off,
			DefRating:           td.Def,
			Pace:                td.Pace,
			QuarterDistribution: td.Quarters,
			Source:              model.SourceReference,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
		}
		t.profiles[td.Name] = p
		t.teams = append(t.teams, Team{Name: td.Name, City: td.City})

		t.aliases[Normalize(td.Name)] = td.Name
		if td.City != "" {
			t.aliases[Normalize(td.City+" "+td.Name)] = td.Name
		}
		for _, a := range td.Aliases {
			t.aliases[Normalize(a)] = td.Name
		}
	}
	for _, v := range doc.AltitudeVenues {
		t.altitude[v] = true
	}
	for i := range t.keyStarters {
		t.keyStarters[i] = Normalize(t.keyStarters[i])
	}
	for i := range t.elite {
		t.elite[i].Key = Normalize(t.elite[i].Key)
	}
	return t, nil
}

// Teams lists the franchises in dataset order.
func (t *Table) Teams() []Team {
	out := make([]Team, len(t.teams))
	copy(out, t.teams)
	return out
}

// Canonical resolves a nickname, alias or full name ("Denver Nuggets",
// "sixers") to the canonical nickname.
func (t *Table) Canonical(name string) (string, bool) {
	key := Normalize(name)
	if key == "" {
		return "", false
	}
	if c, ok := t.aliases[key]; ok {
		return c, true
	}
	// Feed names sometimes carry a city we do not list; try the trailing words.
	fields := strings.Fields(key)
	for i := 1; i < len(fields); i++ {
		if c, ok := t.aliases[strings.Join(fields[i:], " ")]; ok {
			return c, true
		}
	}
	return "", false
}

// Profile returns the reference profile for a canonical team.
func (t *Table) Profile(team string) (model.TeamStatProfile, bool) {
	p, ok := t.profiles[team]
	return p, ok
}

// Quarters returns the team's quarter distribution, or an even split.
func (t *Table) Quarters(team string) [4]float64 {
	if p, ok := t.profiles[team]; ok {
		return p.QuarterDistribution
	}
	return model.EvenQuarters()
}

// LeagueAverage returns the default profile used when no data exists for team.
func (t *Table) LeagueAverage(team string) model.TeamStatProfile {
	return model.TeamStatProfile{
		Team:                team,
		OffRating:           t.average.Off,
		DefRating:           t.average.Def,
		Pace:                t.average.Pace,
		QuarterDistribution: t.average.Quarters,
		Source:              model.SourceLeagueAverage,
	}
}

// IsAltitudeVenue reports whether a home team plays at altitude.
func (t *Table) IsAltitudeVenue(team string) bool { return t.altitude[team] }

// AltitudeVenues lists the altitude home teams.
func (t *Table) AltitudeVenues() []string {
	out := make([]string, 0, len(t.altitude))
	for v := range t.altitude {
		out = append(out, v)
	}
	return out
}

// Elite returns the elite star table in precedence order.
func (t *Table) Elite() []Elite {
	out := make([]Elite, len(t.elite))
	copy(out, t.elite)
	return out
}

// KeyStarters returns the key starter fragments in precedence order.
func (t *Table) KeyStarters() []string {
	out := make([]string, len(t.keyStarters))
	copy(out, t.keyStarters)
	return out
}

// Normalize lowercases, strips diacritics and collapses whitespace.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(strings.ToLower(b.String())), " ")
}
