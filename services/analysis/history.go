package analysis

import (
	"context"
	"fmt"
	"strings"

	"tcgmeta/lib/archetype"
	"tcgmeta/lib/textutil"
	"tcgmeta/lib/tournament"
)

type PlayerNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *PlayerNotFoundError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("player %q not found", e.Name)
	}
	return fmt.Sprintf("player %q not found, did you mean %s?", e.Name, strings.Join(e.Suggestions, ", "))
}

// Match is one round of a player's tournament from their perspective.
type Match struct {
	// Round is 1-based
	Round    int
	Opponent string
	// OpponentArchetype is nil when the opponent has no readable decklist
	OpponentArchetype archetype.Archetype
	Result            tournament.Result
}

type History struct {
	Player  tournament.Player
	Matches []Match
}

const (
	suggestionThreshold = 0.8
	suggestionLimit     = 5
)

// FindPlayer looks a player up by name ignoring case and whitespace. A
// partial name is accepted when it matches exactly one player.
func FindPlayer(players []tournament.Player, name string) (tournament.Player, error) {
	target := textutil.NormalizeName(name)
	names := make([]string, len(players))
	var partial []tournament.Player
	for i, p := range players {
		if textutil.NormalizeName(p.Name) == target {
			return p, nil
		}
		if target != "" && textutil.MatchName(p.Name, []string{target}) {
			partial = append(partial, p)
		}
		names[i] = p.Name
	}
	if len(partial) == 1 {
		return partial[0], nil
	}
	return tournament.Player{}, &PlayerNotFoundError{
		Name:        name,
		Suggestions: textutil.Suggest(name, names, suggestionThreshold, suggestionLimit),
	}
}

// History lists the opponents a player faced in every round of a tournament.
func (s Service) History(ctx context.Context, id, name string) (History, error) {
	event, _, err := s.Event(ctx, id)
	if err != nil {
		return History{}, err
	}
	player, err := FindPlayer(event.Players, name)
	if err != nil {
		return History{}, err
	}
	return HistoryOf(event, player), nil
}

func HistoryOf(event tournament.Event, player tournament.Player) History {
	index := tournament.PlayerIndex(event.Players)
	history := History{Player: player}
	for i, round := range event.Rounds {
		for _, outcome := range round {
			opponent, result, ok := outcome.Involves(player.Name)
			if !ok {
				continue
			}
			history.Matches = append(history.Matches, Match{
				Round:             i + 1,
				Opponent:          opponent,
				OpponentArchetype: index[opponent].Archetype,
				Result:            result,
			})
		}
	}
	return history
}
