package tournament

import (
	"fmt"

	"tcgmeta/lib/archetype"
)

// Player is one classified participant, their name is "First Last [CC]".
type Player struct {
	Name        string
	DecklistURL string
	Decklist    archetype.Decklist
	Archetype   archetype.Archetype
}

type Result int

const (
	P1Win Result = iota
	P2Win
	Tie
)

func (r Result) String() string {
	switch r {
	case P1Win:
		return "P1"
	case P2Win:
		return "P2"
	case Tie:
		return "TIE"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// Outcome is a finished match between two players, byes are never
// represented.
type Outcome struct {
	Player1 string
	Player2 string
	Result  Result
}

// Involves reports whether the named player took part in the match and, if
// so, who they faced and their result from their own perspective.
func (o Outcome) Involves(name string) (opponent string, result Result, ok bool) {
	switch name {
	case o.Player1:
		return o.Player2, o.Result, true
	case o.Player2:
		switch o.Result {
		case P1Win:
			return o.Player1, P2Win, true
		case P2Win:
			return o.Player1, P1Win, true
		}
		return o.Player1, o.Result, true
	}
	return "", 0, false
}

type Round []Outcome

// Event is everything known about one tournament.
type Event struct {
	ID      string
	Name    string
	Players []Player
	Rounds  []Round
}

// PlayerIndex maps player names to their record, the last player with a
// given name wins.
func PlayerIndex(players []Player) map[string]Player {
	index := make(map[string]Player, len(players))
	for _, p := range players {
		index[p.Name] = p
	}
	return index
}
