package rk9

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tcgmeta/lib/archetype"
	"tcgmeta/lib/fetchcache"
	"tcgmeta/lib/htmlutil"
	"tcgmeta/lib/tournament"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("tcgmeta/lib/rk9")

const (
	DefaultBaseURL   = "https://rk9.gg"
	DefaultDivision  = "Masters"
	DefaultPod       = 2
	DefaultMaxRounds = 32
)

// ErrUnknownResult is returned for a finished match page where neither
// player is marked as winner and no tie is marked.
var ErrUnknownResult = errors.New("winner not found in match")

type Options struct {
	BaseURL   string
	Division  string
	Pod       int
	DeckSize  int
	MaxRounds int
}

func DefaultOptions() Options {
	return Options{
		BaseURL:   DefaultBaseURL,
		Division:  DefaultDivision,
		Pod:       DefaultPod,
		DeckSize:  archetype.DefaultDeckSize,
		MaxRounds: DefaultMaxRounds,
	}
}

// Client reads rosters, decklists and pairings through a fetcher, usually a
// *fetchcache.Cache.
type Client struct {
	fetcher fetchcache.Fetcher
	opts    Options
}

func NewClient(fetcher fetchcache.Fetcher, opts Options) Client {
	defaults := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = defaults.BaseURL
	}
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")
	if opts.Division == "" {
		opts.Division = defaults.Division
	}
	if opts.Pod == 0 {
		opts.Pod = defaults.Pod
	}
	if opts.DeckSize == 0 {
		opts.DeckSize = defaults.DeckSize
	}
	if opts.MaxRounds == 0 {
		opts.MaxRounds = defaults.MaxRounds
	}
	return Client{fetcher: fetcher, opts: opts}
}

func (c Client) Options() Options {
	return c.opts
}

// TournamentID accepts either a bare tournament id or a pairings/roster url
// and returns the id.
func TournamentID(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSuffix(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (c Client) RosterURL(id string) string {
	return fmt.Sprintf("%s/roster/%s", c.opts.BaseURL, url.PathEscape(TournamentID(id)))
}

func (c Client) RoundURL(id string, round int) string {
	return fmt.Sprintf(
		"%s/pairings/%s?pod=%d&rnd=%d",
		c.opts.BaseURL, url.PathEscape(TournamentID(id)), c.opts.Pod, round,
	)
}

type RosterEntry struct {
	Name        string
	DecklistURL string
}

func PlayerName(first, last, country string) string {
	return fmt.Sprintf("%s %s [%s]", first, last, country)
}

func (c Client) GetRoster(ctx context.Context, id string) ([]RosterEntry, error) {
	ctx, span := tracer.Start(ctx, "client:GetRoster")
	defer span.End()

	link := c.RosterURL(id)
	span.SetAttributes(attribute.String("url", link))

	contents, err := c.fetcher.Fetch(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch roster")
		return nil, err
	}
	entries, err := ParseRoster(contents, c.opts.BaseURL, c.opts.Division)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse roster")
		return nil, fmt.Errorf("roster %s: %w", link, err)
	}
	span.SetAttributes(attribute.Int("players", len(entries)))
	return entries, nil
}

// ParseRoster reads the roster table, keeping only players of the given
// division whose decklist is published.
func ParseRoster(contents []byte, baseURL, division string) ([]RosterEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(contents))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	body := doc.Find("div.card-body").First().Find("tbody").First()
	if body.Length() == 0 {
		return nil, fmt.Errorf("roster table not found")
	}

	var entries []RosterEntry
	body.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 6 {
			return
		}
		cell := func(i int) string {
			return htmlutil.Text(cells.Eq(i))
		}
		if cell(4) != division {
			return
		}
		slot := cells.Eq(5)
		if htmlutil.Text(slot) != "View" {
			return
		}
		href, ok := slot.Find("a").First().Attr("href")
		if !ok {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		entries = append(entries, RosterEntry{
			Name:        PlayerName(cell(1), cell(2), cell(3)),
			DecklistURL: base.ResolveReference(ref).String(),
		})
	})
	return entries, nil
}

func (c Client) GetDecklist(ctx context.Context, link string) (archetype.Decklist, error) {
	ctx, span := tracer.Start(ctx, "client:GetDecklist")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	contents, err := c.fetcher.Fetch(ctx, link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch decklist")
		return nil, err
	}
	deck, err := ParseDecklist(contents, c.opts.DeckSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid decklist")
		return nil, err
	}
	return deck, nil
}

// ParseDecklist reads the card list of a decklist page. Pokémon are named
// after their card and set number, everything else by card name only.
func ParseDecklist(contents []byte, deckSize int) (archetype.Decklist, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(contents))
	if err != nil {
		return nil, err
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("decklist table not found")
	}

	var cards []archetype.Card
	var parseErr error
	table.Find("li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		name := li.AttrOr("data-cardname", "")
		quantity, err := strconv.Atoi(li.AttrOr("data-quantity", ""))
		if err != nil {
			parseErr = fmt.Errorf("card %q: invalid quantity: %w", name, err)
			return false
		}
		if li.AttrOr("data-cardtype", "") == "pokemon" {
			name = name + " " + li.AttrOr("data-setnum", "")
		}
		cards = append(cards, archetype.Card{Name: name, Quantity: quantity})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	deck := archetype.Merge(cards)
	err = deck.Validate(deckSize)
	if err != nil {
		return nil, err
	}
	return deck, nil
}

// GetRounds reads round pages from round 1 onward until a page without
// any pairing.
func (c Client) GetRounds(ctx context.Context, id string) ([]tournament.Round, error) {
	ctx, span := tracer.Start(ctx, "client:GetRounds")
	defer span.End()
	span.SetAttributes(attribute.String("tournament", id))

	var rounds []tournament.Round
	for n := 1; n <= c.opts.MaxRounds; n++ {
		link := c.RoundURL(id, n)
		contents, err := c.fetcher.Fetch(ctx, link)
		if isNotFound(err) {
			slog.DebugContext(ctx, "round page missing", "tournament", id, "round", n)
			break
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch round")
			return nil, err
		}
		round, pairings, err := parseRound(contents)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to parse round")
			return nil, fmt.Errorf("round %d: %w", n, err)
		}
		if pairings == 0 {
			break
		}
		slog.DebugContext(ctx, "parsed round", "tournament", id, "round", n, "matches", len(round))
		rounds = append(rounds, round)
	}
	span.SetAttributes(attribute.Int("rounds", len(rounds)))
	return rounds, nil
}

func isNotFound(err error) bool {
	var fetchErr *fetchcache.FetchError
	return errors.As(err, &fetchErr) && fetchErr.StatusCode == http.StatusNotFound
}

// ParseRound reads the outcomes of one round page, byes are left out.
func ParseRound(contents []byte) (tournament.Round, error) {
	round, _, err := parseRound(contents)
	return round, err
}

func parseRound(contents []byte) (tournament.Round, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(contents))
	if err != nil {
		return nil, 0, err
	}

	round := tournament.Round{}
	pairings := 0
	var parseErr error
	doc.Find("div.match").EachWithBreak(func(_ int, match *goquery.Selection) bool {
		divs := match.Find("div")
		if divs.Length() != 3 {
			parseErr = fmt.Errorf("expected 3 divs in match, found %d", divs.Length())
			return false
		}
		player1, table, player2 := divs.Eq(0), divs.Eq(1), divs.Eq(2)
		tableNumber := htmlutil.Text(table)
		if tableNumber == "Table #" {
			return true
		}
		pairings++
		if htmlutil.Text(player2) == "" {
			return true
		}

		outcome := tournament.Outcome{
			Player1: htmlutil.Text(player1.Find("span").First()),
			Player2: htmlutil.Text(player2.Find("span").First()),
		}
		switch {
		case player1.HasClass("winner"):
			outcome.Result = tournament.P1Win
		case player1.HasClass("tie"):
			outcome.Result = tournament.Tie
		case player2.HasClass("winner"):
			outcome.Result = tournament.P2Win
		default:
			parseErr = fmt.Errorf("table %s: %w", tableNumber, ErrUnknownResult)
			return false
		}
		round = append(round, outcome)
		return true
	})
	if parseErr != nil {
		return nil, 0, parseErr
	}
	return round, pairings, nil
}
