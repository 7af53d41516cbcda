// Package recommend ranks a player's card catalogue against the current
// session context. It is the drop-in fallback when the forge service is
// unavailable or returns malformed output, so it never assumes generated
// metadata is present on a card.
package recommend

import (
	"sort"
	"time"

	"innerlevel/internal/card"
	"innerlevel/internal/energy"
	"innerlevel/internal/quest"
)

const (
	impactWeight      = 10
	efficiencyWeight  = 20
	unaffordableScore = -50
	timeRelevance     = 15
	questAlignment    = 20
	questInProgress   = 10
	cooldownPenalty   = -100
)

// Context is everything scoring needs about the player.
type Context struct {
	Energy    energy.State
	Level     int
	Now       time.Time
	Cooldowns map[string]time.Time
	Quests    []quest.Quest
}

// Scored pairs a card with its total score.
type Scored struct {
	Card  card.Card `json:"card"`
	Score float64   `json:"score"`
}

// Score computes the additive relevance score for one card.
func Score(c card.Card, ctx Context) float64 {
	score := c.Impact * impactWeight

	if c.EnergyCost <= ctx.Energy.Current {
		// Recovery and free cards are always affordable; floor the
		// denominator so they rank by impact rather than dividing by
		// zero or a negative cost.
		denom := c.EnergyCost
		if denom < 1 {
			denom = 1
		}
		score += c.Impact / denom * efficiencyWeight
	} else {
		score += unaffordableScore
	}

	if w := card.CurrentWindow(ctx.Now); w != "" && c.HasTag(string(w)) {
		score += timeRelevance
	}

	for _, q := range quest.Active(ctx.Quests) {
		if q.Type != "" && c.HasTag(q.Type) {
			score += questAlignment
			if q.Progress < 100 {
				score += questInProgress
			}
		}
	}

	score += rarityBonus(c.Rarity)

	if until, ok := ctx.Cooldowns[c.ID]; ok && until.After(ctx.Now) {
		// Keep it rankable but last, rather than dropping it.
		score += cooldownPenalty
	}

	return score
}

// Rank sorts cards descending by score and truncates to limit. The sort
// is stable: ties keep their input order, so identical inputs always
// produce identical output.
func Rank(cards []card.Card, ctx Context, limit int) []Scored {
	out := make([]Scored, 0, len(cards))
	for _, c := range cards {
		out = append(out, Scored{Card: c, Score: Score(c, ctx)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func rarityBonus(r card.Rarity) float64 {
	switch r {
	case card.RarityUncommon:
		return 5
	case card.RarityRare:
		return 10
	case card.RarityEpic:
		return 15
	case card.RarityLegendary:
		return 25
	default:
		return 0
	}
}
