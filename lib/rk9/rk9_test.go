package rk9

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"tcgmeta/lib/archetype"
	"tcgmeta/lib/fetchcache"
	"tcgmeta/lib/tournament"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func readFixture(t testing.TB, name string) []byte {
	contents, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return contents
}

// fixtureFetcher serves testdata files by url and fails on anything else.
func fixtureFetcher(t testing.TB, pages map[string]string) (fetchcache.Fetcher, *[]string) {
	var requested []string
	return fetchcache.FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		requested = append(requested, url)
		name, ok := pages[url]
		if !ok {
			return nil, &fetchcache.FetchError{URL: url, Attempts: 1, StatusCode: 404}
		}
		return readFixture(t, name), nil
	}), &requested
}

func TestTournamentID(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "WCS01mIMYt8if4wVuaO0", expected: "WCS01mIMYt8if4wVuaO0"},
		{input: "https://rk9.gg/pairings/WCS01mIMYt8if4wVuaO0", expected: "WCS01mIMYt8if4wVuaO0"},
		{input: "https://rk9.gg/roster/NA01wsS5yrQoQIs3mDtB/", expected: "NA01wsS5yrQoQIs3mDtB"},
		{input: "https://rk9.gg/pairings/SG01meRA8mIYExcTihNU?pod=2&rnd=3", expected: "SG01meRA8mIYExcTihNU"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, TournamentID(test.input))
	}
}

func TestURLs(t *testing.T) {
	client := NewClient(nil, Options{})
	require.Equal(t, "https://rk9.gg/roster/TEST01", client.RosterURL("TEST01"))
	require.Equal(t, "https://rk9.gg/pairings/TEST01?pod=2&rnd=4", client.RoundURL("https://rk9.gg/pairings/TEST01", 4))
}

func TestParseRoster(t *testing.T) {
	entries, err := ParseRoster(readFixture(t, "roster.html"), DefaultBaseURL, DefaultDivision)
	require.Nil(t, err)

	diff := cmp.Diff([]RosterEntry{
		{Name: "Alice Smith [US]", DecklistURL: "https://rk9.gg/decklist/public/TEST01/alice"},
		{Name: "Bob Jones [FR]", DecklistURL: "https://rk9.gg/decklist/public/TEST01/bob"},
	}, entries)
	require.Empty(t, diff)

	seniors, err := ParseRoster(readFixture(t, "roster.html"), DefaultBaseURL, "Seniors")
	require.Nil(t, err)
	require.Len(t, seniors, 1)
	require.Equal(t, "Carol White [JP]", seniors[0].Name)

	_, err = ParseRoster([]byte("<html><body></body></html>"), DefaultBaseURL, DefaultDivision)
	require.NotNil(t, err)
}

func TestParseDecklist(t *testing.T) {
	deck, err := ParseDecklist(readFixture(t, "decklist.html"), archetype.DefaultDeckSize)
	require.Nil(t, err)

	diff := cmp.Diff(archetype.Decklist{
		{Name: "Charizard ex OBF 125", Quantity: 2},
		{Name: "Charizard ex PAF 54", Quantity: 1},
		{Name: "Pidgeot ex OBF 164", Quantity: 2},
		{Name: "Rare Candy", Quantity: 4},
		{Name: "Professor's Research", Quantity: 45},
		{Name: "Fire Energy", Quantity: 6},
	}, deck)
	require.Empty(t, diff)

	classifier := archetype.NewClassifier(archetype.DefaultRuleTable())
	require.Equal(t, archetype.Archetype{"charizard", "pidgeot"}, classifier.Classify(deck))
}

func TestParseDecklistWrongSize(t *testing.T) {
	_, err := ParseDecklist(readFixture(t, "decklist.html"), 61)
	var sizeErr *archetype.DeckSizeError
	require.True(t, errors.As(err, &sizeErr))
	require.Equal(t, 60, sizeErr.Found)

	_, err = ParseDecklist([]byte(`<table><tr><td><ul><li data-cardname="X" data-quantity="many"></li></ul></td></tr></table>`), 60)
	require.NotNil(t, err)
}

func TestParseRound(t *testing.T) {
	round, err := ParseRound(readFixture(t, "round1.html"))
	require.Nil(t, err)

	diff := cmp.Diff(tournament.Round{
		{Player1: "Alice Smith [US]", Player2: "Bob Jones [FR]", Result: tournament.P1Win},
		{Player1: "Eve Black [DE]", Player2: "Alice Smith [US]", Result: tournament.P2Win},
		{Player1: "Bob Jones [FR]", Player2: "Eve Black [DE]", Result: tournament.Tie},
	}, round)
	require.Empty(t, diff)
}

func TestParseRoundUnknownResult(t *testing.T) {
	_, err := ParseRound(readFixture(t, "unknown_result.html"))
	require.True(t, errors.Is(err, ErrUnknownResult))
}

func TestGetRounds(t *testing.T) {
	fetcher, requested := fixtureFetcher(t, map[string]string{
		"https://rk9.gg/pairings/TEST01?pod=2&rnd=1": "round1.html",
		"https://rk9.gg/pairings/TEST01?pod=2&rnd=2": "empty_round.html",
		"https://rk9.gg/pairings/TEST01?pod=2&rnd=3": "round1.html",
	})
	client := NewClient(fetcher, Options{})

	rounds, err := client.GetRounds(context.Background(), "TEST01")
	require.Nil(t, err)
	require.Len(t, rounds, 1)
	require.Len(t, rounds[0], 3)
	require.Len(t, *requested, 2)
}

func TestGetRoundsMaxRounds(t *testing.T) {
	pages := map[string]string{}
	for n := 1; n <= 5; n++ {
		pages[fmt.Sprintf("https://rk9.gg/pairings/TEST01?pod=2&rnd=%d", n)] = "round1.html"
	}
	fetcher, _ := fixtureFetcher(t, pages)
	client := NewClient(fetcher, Options{MaxRounds: 3})

	rounds, err := client.GetRounds(context.Background(), "TEST01")
	require.Nil(t, err)
	require.Len(t, rounds, 3)
}

func TestGetRoundsMissingPage(t *testing.T) {
	fetcher, requested := fixtureFetcher(t, map[string]string{
		"https://rk9.gg/pairings/TEST01?pod=2&rnd=1": "round1.html",
	})
	client := NewClient(fetcher, Options{})

	rounds, err := client.GetRounds(context.Background(), "TEST01")
	require.Nil(t, err)
	require.Len(t, rounds, 1)
	require.Len(t, rounds[0], 3)
	require.Len(t, *requested, 2)
}

func TestGetRoundsFetchError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
	}{
		{name: "server error", err: &fetchcache.FetchError{URL: "round", Attempts: 3, StatusCode: 500}},
		{name: "transport", err: &fetchcache.FetchError{URL: "round", Attempts: 3, Err: errors.New("connection reset")}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := fetchcache.FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
				return nil, tc.err
			})
			client := NewClient(fetcher, Options{})

			_, err := client.GetRounds(context.Background(), "TEST01")
			var fetchErr *fetchcache.FetchError
			require.True(t, errors.As(err, &fetchErr))
		})
	}
}

func TestGetRosterAndDecklist(t *testing.T) {
	fetcher, _ := fixtureFetcher(t, map[string]string{
		"https://rk9.gg/roster/TEST01":                "roster.html",
		"https://rk9.gg/decklist/public/TEST01/alice": "decklist.html",
	})
	client := NewClient(fetcher, Options{})
	ctx := context.Background()

	roster, err := client.GetRoster(ctx, "https://rk9.gg/pairings/TEST01")
	require.Nil(t, err)
	require.Len(t, roster, 2)

	deck, err := client.GetDecklist(ctx, roster[0].DecklistURL)
	require.Nil(t, err)
	require.Equal(t, 60, deck.Total())

	_, err = client.GetDecklist(ctx, roster[1].DecklistURL)
	require.NotNil(t, err)
}
