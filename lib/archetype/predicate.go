package archetype

// Predicate is a condition over a decklist. rule tables are trees of the
// variants below.
type Predicate interface {
	Match(deck Decklist) bool
}

// Present matches when Card is a substring of at least one card identifier,
// so a base name matches every printing of the card.
type Present struct {
	Card string
}

func (p Present) Match(deck Decklist) bool {
	return deck.Contains(p.Card)
}

// PresentWithQuantity matches when the identifiers containing Card add up
// to at least Min copies.
type PresentWithQuantity struct {
	Card string
	Min  int
}

func (p PresentWithQuantity) Match(deck Decklist) bool {
	return deck.Quantity(p.Card) >= p.Min
}

type All []Predicate

func (a All) Match(deck Decklist) bool {
	for _, p := range a {
		if !p.Match(deck) {
			return false
		}
	}
	return true
}

type Any []Predicate

func (a Any) Match(deck Decklist) bool {
	for _, p := range a {
		if p.Match(deck) {
			return true
		}
	}
	return false
}

type Not struct {
	Inner Predicate
}

func (n Not) Match(deck Decklist) bool {
	return !n.Inner.Match(deck)
}

// Contains is the conjunction of Present over every card.
func Contains(cards ...string) All {
	all := make(All, len(cards))
	for i, c := range cards {
		all[i] = Present{Card: c}
	}
	return all
}
