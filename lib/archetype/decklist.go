package archetype

import (
	"fmt"
	"strings"
)

// DefaultDeckSize is the size of a constructed deck in the standard format.
const DefaultDeckSize = 60

// Card is one line of a decklist. Pokémon are identified by their name
// followed by their set code ("Pidgeot ex OBF") so reprints stay apart,
// every other card by its bare name.
type Card struct {
	Name     string
	Quantity int
}

type Decklist []Card

// Merge sums the quantity of cards sharing an identifier while keeping the
// order in which each identifier first appeared.
func Merge(cards []Card) Decklist {
	index := map[string]int{}
	var out Decklist
	for _, c := range cards {
		i, seen := index[c.Name]
		if seen {
			out[i].Quantity += c.Quantity
			continue
		}
		index[c.Name] = len(out)
		out = append(out, c)
	}
	return out
}

func (d Decklist) Total() int {
	total := 0
	for _, c := range d {
		total += c.Quantity
	}
	return total
}

type DeckSizeError struct {
	Expected int
	Found    int
}

func (e *DeckSizeError) Error() string {
	return fmt.Sprintf("the decklist doesn't count %d cards (number of cards found: %d)", e.Expected, e.Found)
}

// Validate checks every quantity is positive and the deck has exactly `size` cards.
func (d Decklist) Validate(size int) error {
	for _, c := range d {
		if c.Quantity < 1 {
			return fmt.Errorf("card %q has quantity %d", c.Name, c.Quantity)
		}
	}
	total := d.Total()
	if total != size {
		return &DeckSizeError{Expected: size, Found: total}
	}
	return nil
}

// Contains reports whether `card` is a substring of any card identifier.
func (d Decklist) Contains(card string) bool {
	for _, c := range d {
		if strings.Contains(c.Name, card) {
			return true
		}
	}
	return false
}

// Quantity sums the quantities of every identifier containing `card`.
func (d Decklist) Quantity(card string) int {
	total := 0
	for _, c := range d {
		if strings.Contains(c.Name, card) {
			total += c.Quantity
		}
	}
	return total
}
