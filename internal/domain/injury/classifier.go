// Package injury turns a team's absentee list into a capped scoring penalty.
//
// Players are classified against two ordered tables: elite stars, whose
// impact is computed from their season line, and key starters, who carry a
// fixed penalty. Everyone else is a role player. The first match wins, elite
// table first, so an overlapping fragment resolves to the earlier entry.
package injury

import (
	"github.com/okian/hoopline/internal/domain/model"
	"github.com/okian/hoopline/internal/domain/reference"
)

// Fixed penalties for the non-elite tiers.
const (
	KeyStarterPenalty = 0.065
	RolePlayerPenalty = 0.015
)

// Classifier assigns a tier and penalty to one absent player.
type Classifier interface {
	Classify(name string) model.Absence
}

// TableClassifier classifies against the elite and key starter tables.
type TableClassifier struct {
	elite       []reference.Elite
	keyStarters []string
	matcher     NameMatcher
}

// NewTableClassifier builds a classifier over the dataset's star tables.
func NewTableClassifier(tbl *reference.Table, opts ...ClassifierOption) *TableClassifier {
	c := &TableClassifier{
		elite:       tbl.Elite(),
		keyStarters: tbl.KeyStarters(),
		matcher:     SubstringMatcher{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify implements Classifier.
func (c *TableClassifier) Classify(name string) model.Absence {
	key := reference.Normalize(name)

	for _, e := range c.elite {
		if c.matcher.Match(key, e.Key) {
			return absence(name, model.TierElite, EliteImpact(e))
		}
	}
	for _, frag := range c.keyStarters {
		if c.matcher.Match(key, frag) {
			return absence(name, model.TierKeyStarter, KeyStarterPenalty)
		}
	}
	return absence(name, model.TierRolePlayer, RolePlayerPenalty)
}

// EliteImpact returns the fixed impact if set, else
// points/200 + rebounds/200 + usage/600.
func EliteImpact(e reference.Elite) float64 {
	if e.Impact != nil {
		return *e.Impact
	}
	return e.Points/200 + e.Rebounds/200 + e.Usage/600
}

func absence(name string, tier model.StarTier, penalty float64) model.Absence {
	return model.Absence{Name: name, Tier: tier, Label: tier.Label(), Penalty: penalty}
}
