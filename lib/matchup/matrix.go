package matchup

import (
	"fmt"
	"slices"

	"tcgmeta/lib/archetype"
	"tcgmeta/lib/tournament"
)

// Record is the result of every match between two archetypes, from the
// perspective of the first one.
type Record struct {
	Wins   int
	Ties   int
	Losses int
}

func (r Record) Total() int {
	return r.Wins + r.Ties + r.Losses
}

// Reversed is the same record from the opponent's perspective.
func (r Record) Reversed() Record {
	return Record{Wins: r.Losses, Ties: r.Ties, Losses: r.Wins}
}

// WinRate counts a tie as a third of a win. ok is false without matches.
func (r Record) WinRate() (rate float64, ok bool) {
	total := r.Total()
	if total == 0 {
		return 0, false
	}
	return (float64(r.Wins) + float64(r.Ties)/3) / float64(total), true
}

func (r Record) String() string {
	return fmt.Sprintf("%d-%d-%d", r.Wins, r.Ties, r.Losses)
}

// Matrix maps row archetype to column archetype to the row's record. Every
// axis has a cell against every axis, itself included.
type Matrix map[string]map[string]Record

func NewMatrix(keys []string) Matrix {
	m := make(Matrix, len(keys))
	for _, row := range keys {
		cells := make(map[string]Record, len(keys))
		for _, col := range keys {
			cells[col] = Record{}
		}
		m[row] = cells
	}
	return m
}

// Build folds the rounds of one tournament into a matrix whose axes are the
// folded population of its players.
func Build(players []tournament.Player, rounds []tournament.Round, minRound int) Matrix {
	return BuildEvents(minRound, tournament.Event{Players: players, Rounds: rounds})
}

// BuildEvents builds one matrix over several tournaments, the population is
// shared by all of them.
func BuildEvents(minRound int, events ...tournament.Event) Matrix {
	var players []tournament.Player
	for _, e := range events {
		players = append(players, e.Players...)
	}
	pop := Count(players).Fold()

	m := NewMatrix(pop.Keys())
	for _, e := range events {
		m.fold(pop, tournament.PlayerIndex(e.Players), e.Rounds, minRound)
	}
	return m
}

// fold adds the outcomes of every round at index >= minRound, skipping
// outcomes with a player that isn't in the index.
func (m Matrix) fold(pop Population, players map[string]tournament.Player, rounds []tournament.Round, minRound int) {
	for i, round := range rounds {
		if i < minRound {
			continue
		}
		for _, outcome := range round {
			p1, ok := players[outcome.Player1]
			if !ok {
				continue
			}
			p2, ok := players[outcome.Player2]
			if !ok {
				continue
			}
			m.Add(pop.Resolve(p1.Archetype.Key()), pop.Resolve(p2.Archetype.Key()), outcome.Result)
		}
	}
}

// Add records one match on both sides of the matrix. A mirror match lands
// twice on the same cell.
func (m Matrix) Add(a, b string, result tournament.Result) {
	if a == b {
		r := m.cell(a, a)
		switch result {
		case tournament.P1Win, tournament.P2Win:
			r.Wins++
			r.Losses++
		case tournament.Tie:
			r.Ties += 2
		}
		m[a][a] = r
		return
	}

	ab, ba := m.cell(a, b), m.cell(b, a)
	switch result {
	case tournament.P1Win:
		ab.Wins++
		ba.Losses++
	case tournament.P2Win:
		ab.Losses++
		ba.Wins++
	case tournament.Tie:
		ab.Ties++
		ba.Ties++
	}
	m[a][b] = ab
	m[b][a] = ba
}

func (m Matrix) cell(row, col string) Record {
	if m[row] == nil {
		m[row] = map[string]Record{}
	}
	return m[row][col]
}

func (m Matrix) Get(row, col string) Record {
	return m[row][col]
}

// Keys returns the axes in lexical order with unown last.
func (m Matrix) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case a == archetype.Unown:
			return 1
		case b == archetype.Unown:
			return -1
		case a < b:
			return -1
		}
		return 1
	})
	return keys
}

// Matches is the number of matches folded into the matrix. Every match
// is held by two sides.
func (m Matrix) Matches() int {
	total := 0
	for _, cells := range m {
		for _, r := range cells {
			total += r.Total()
		}
	}
	return total / 2
}

// Prune returns a copy where every cell with at most minMatches matches is
// reset. Pruning keeps the matrix symmetric.
func (m Matrix) Prune(minMatches int) Matrix {
	out := make(Matrix, len(m))
	for row, cells := range m {
		copied := make(map[string]Record, len(cells))
		for col, r := range cells {
			if r.Total() <= minMatches {
				r = Record{}
			}
			copied[col] = r
		}
		out[row] = copied
	}
	return out
}

type SymmetryError struct {
	Row    string
	Col    string
	Record Record
	Mirror Record
}

func (e *SymmetryError) Error() string {
	return fmt.Sprintf("%s vs %s is %s but %s vs %s is %s", e.Row, e.Col, e.Record, e.Col, e.Row, e.Mirror)
}

// Verify checks every cell against its mirror cell.
func (m Matrix) Verify() error {
	for _, row := range m.Keys() {
		for col, r := range m[row] {
			mirror, ok := m[col][row]
			if !ok || r.Wins != mirror.Losses || r.Ties != mirror.Ties {
				return &SymmetryError{Row: row, Col: col, Record: r, Mirror: mirror}
			}
		}
	}
	return nil
}
