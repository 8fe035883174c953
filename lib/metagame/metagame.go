package metagame

import (
	"cmp"
	"slices"

	"tcgmeta/lib/matchup"
)

// Share is the frequency of each archetype in a population, frequencies
// sum to 1.
type Share map[string]float64

func ShareOf(pop matchup.Population) Share {
	total := pop.Total()
	share := make(Share, len(pop))
	if total == 0 {
		return share
	}
	for k, n := range pop {
		share[k] = float64(n) / float64(total)
	}
	return share
}

// Points are the tournament points awarded for each result.
type Points struct {
	Win  float64
	Tie  float64
	Loss float64
}

var DefaultPoints = Points{Win: 3, Tie: 1, Loss: 0}

// Average is the mean points per match of a record, ok is false without
// matches.
func (p Points) Average(r matchup.Record) (avg float64, ok bool) {
	total := r.Total()
	if total == 0 {
		return 0, false
	}
	sum := float64(r.Wins)*p.Win + float64(r.Ties)*p.Tie + float64(r.Losses)*p.Loss
	return sum / float64(total), true
}

// Score is the expected points per round of each row archetype against a
// field drawn from share. Opponents never faced, or absent from share, add
// nothing.
func (p Points) Score(m matchup.Matrix, share Share) map[string]float64 {
	scores := make(map[string]float64, len(m))
	for row, cells := range m {
		score := 0.0
		for col, r := range cells {
			avg, ok := p.Average(r)
			if !ok {
				continue
			}
			score += share[col] * avg
		}
		scores[row] = score
	}
	return scores
}

func Score(m matchup.Matrix, share Share) map[string]float64 {
	return DefaultPoints.Score(m, share)
}

type Ranking struct {
	Archetype string
	Score     float64
	Count     int
}

// Rank sorts scores descending, ties are broken by population count and
// then by key.
func Rank(scores map[string]float64, pop matchup.Population) []Ranking {
	rankings := make([]Ranking, 0, len(scores))
	for k, score := range scores {
		rankings = append(rankings, Ranking{Archetype: k, Score: score, Count: pop[k]})
	}
	slices.SortFunc(rankings, func(a, b Ranking) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Archetype, b.Archetype)
	})
	return rankings
}
