package matchup

import (
	"slices"

	"tcgmeta/lib/archetype"
	"tcgmeta/lib/tournament"
)

// Population counts players per archetype key.
type Population map[string]int

func Count(players []tournament.Player) Population {
	pop := Population{}
	for _, p := range players {
		pop[p.Archetype.Key()]++
	}
	return pop
}

func (p Population) Total() int {
	total := 0
	for _, n := range p {
		total += n
	}
	return total
}

// Keys returns every archetype key in lexical order.
func (p Population) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Rare returns the keys played by a single player, unown excluded.
func (p Population) Rare() []string {
	var rare []string
	for k, n := range p {
		if n == 1 && k != archetype.Unown {
			rare = append(rare, k)
		}
	}
	slices.Sort(rare)
	return rare
}

// Fold merges every rare key into unown. Folding a folded population
// returns an equal population.
func (p Population) Fold() Population {
	folded := make(Population, len(p))
	for k, n := range p {
		if n == 1 && k != archetype.Unown {
			k = archetype.Unown
		}
		folded[k] += n
	}
	return folded
}

// Resolve maps a key onto an axis of the population, keys it doesn't hold
// resolve to unown.
func (p Population) Resolve(key string) string {
	if _, ok := p[key]; ok {
		return key
	}
	return archetype.Unown
}
