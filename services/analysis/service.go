package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"tcgmeta/lib/archetype"
	"tcgmeta/lib/fetchcache"
	"tcgmeta/lib/matchup"
	"tcgmeta/lib/metagame"
	"tcgmeta/lib/rk9"
	"tcgmeta/lib/tournament"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("tcgmeta/services/analysis")

const DefaultWorkers = 10

type Options struct {
	Cache      *fetchcache.Cache
	RK9        rk9.Options
	Classifier archetype.Classifier
	// Workers is the size of the pool warming the cache
	Workers int
	// MinRound is the 0-based index of the first round folded into matrices
	MinRound int
	Points   metagame.Points
}

type Service struct {
	cache      *fetchcache.Cache
	client     rk9.Client
	classifier archetype.Classifier
	workers    int
	minRound   int
	points     metagame.Points
}

func NewService(opts Options) Service {
	if opts.Cache == nil {
		panic("nil cache")
	}
	if opts.Workers < 1 {
		opts.Workers = DefaultWorkers
	}
	if len(opts.Classifier.Table().Rules) == 0 {
		opts.Classifier = archetype.NewClassifier(archetype.DefaultRuleTable())
	}
	if opts.Points == (metagame.Points{}) {
		opts.Points = metagame.DefaultPoints
	}
	return Service{
		cache:      opts.Cache,
		client:     rk9.NewClient(opts.Cache, opts.RK9),
		classifier: opts.Classifier,
		workers:    opts.Workers,
		minRound:   opts.MinRound,
		points:     opts.Points,
	}
}

func (s Service) Client() rk9.Client {
	return s.client
}

// Rejection is a player left out of the analysis because their decklist
// could not be read.
type Rejection struct {
	Player string
	URL    string
	Err    error
}

// Players reads the roster of a tournament and classifies the decklist of
// every player. failures to fetch or validate a decklist reject the player
// instead of failing the tournament.
func (s Service) Players(ctx context.Context, id string) ([]tournament.Player, []Rejection, error) {
	ctx, span := tracer.Start(ctx, "analysis:Players")
	defer span.End()
	span.SetAttributes(attribute.String("tournament", id))

	roster, err := s.client.GetRoster(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get roster")
		return nil, nil, err
	}

	var players []tournament.Player
	var rejections []Rejection
	for _, entry := range roster {
		deck, err := s.client.GetDecklist(ctx, entry.DecklistURL)
		if err != nil {
			var sizeErr *archetype.DeckSizeError
			if !errors.As(err, &sizeErr) && ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			slog.WarnContext(ctx, "rejected decklist", "player", entry.Name, "url", entry.DecklistURL, "err", err)
			rejections = append(rejections, Rejection{Player: entry.Name, URL: entry.DecklistURL, Err: err})
			continue
		}
		players = append(players, tournament.Player{
			Name:        entry.Name,
			DecklistURL: entry.DecklistURL,
			Decklist:    deck,
			Archetype:   s.classifier.Classify(deck),
		})
	}
	span.SetAttributes(
		attribute.Int("players", len(players)),
		attribute.Int("rejected", len(rejections)),
	)
	return players, rejections, nil
}

// Event reads the players and every round of a tournament.
func (s Service) Event(ctx context.Context, id string) (tournament.Event, []Rejection, error) {
	players, rejections, err := s.Players(ctx, id)
	if err != nil {
		return tournament.Event{}, nil, fmt.Errorf("players of %s: %w", id, err)
	}
	rounds, err := s.client.GetRounds(ctx, id)
	if err != nil {
		return tournament.Event{}, nil, fmt.Errorf("rounds of %s: %w", id, err)
	}
	return tournament.Event{ID: rk9.TournamentID(id), Players: players, Rounds: rounds}, rejections, nil
}

// Warm downloads the roster, decklists and rounds of the given tournaments.
// decklists are shuffled and fetched by the worker pool, a failed partition
// is reported in the result without failing the others.
func (s Service) Warm(ctx context.Context, ids ...string) (fetchcache.WarmResult, error) {
	ctx, span := tracer.Start(ctx, "analysis:Warm")
	defer span.End()

	var urls []string
	for _, id := range ids {
		roster, err := s.client.GetRoster(ctx, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to get roster")
			return fetchcache.WarmResult{}, err
		}
		for _, entry := range roster {
			urls = append(urls, entry.DecklistURL)
		}
	}
	rand.Shuffle(len(urls), func(i, j int) {
		urls[i], urls[j] = urls[j], urls[i]
	})

	result, err := fetchcache.Warm(ctx, s.cache, urls, s.workers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to warm decklists")
		return result, err
	}

	for _, id := range ids {
		rounds, err := s.client.GetRounds(ctx, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to get rounds")
			return result, fmt.Errorf("rounds of %s: %w", id, err)
		}
		slog.InfoContext(ctx, "warmed rounds", "tournament", id, "rounds", len(rounds))
	}
	return result, nil
}

type Analysis struct {
	Events     []tournament.Event
	Rejections []Rejection
	// Population is the folded population of every analyzed player
	Population matchup.Population
	Matrix     matchup.Matrix
	Share      metagame.Share
	Scores     map[string]float64
	Rankings   []metagame.Ranking
}

// Analyze builds the matchup matrix of the given tournaments and ranks their
// archetypes. the metagame share is taken from shareIDs, or from the
// analyzed tournaments when shareIDs is empty.
func (s Service) Analyze(ctx context.Context, ids []string, shareIDs []string) (Analysis, error) {
	ctx, span := tracer.Start(ctx, "analysis:Analyze")
	defer span.End()

	var out Analysis
	var players []tournament.Player
	for _, id := range ids {
		event, rejections, err := s.Event(ctx, id)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to read tournament")
			return Analysis{}, err
		}
		out.Events = append(out.Events, event)
		out.Rejections = append(out.Rejections, rejections...)
		players = append(players, event.Players...)
	}

	raw := matchup.Count(players)
	if rare := raw.Rare(); len(rare) > 0 {
		slog.WarnContext(ctx, "archetypes played by a single player are labelled unown", "archetypes", rare)
	}
	out.Population = raw.Fold()
	out.Matrix = matchup.BuildEvents(s.minRound, out.Events...)

	sharePlayers := players
	if len(shareIDs) > 0 {
		sharePlayers = nil
		for _, id := range shareIDs {
			p, _, err := s.Players(ctx, id)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to read share tournament")
				return Analysis{}, fmt.Errorf("players of %s: %w", id, err)
			}
			sharePlayers = append(sharePlayers, p...)
		}
	}
	sharePop := matchup.Population{}
	for key, n := range matchup.Count(sharePlayers) {
		sharePop[out.Population.Resolve(key)] += n
	}
	out.Share = metagame.ShareOf(sharePop)

	out.Scores = s.points.Score(out.Matrix, out.Share)
	out.Rankings = metagame.Rank(out.Scores, out.Population)

	span.SetAttributes(
		attribute.Int("archetypes", len(out.Population)),
		attribute.Int("matches", out.Matrix.Matches()),
	)
	return out, nil
}

// Unclassified returns the players of the given tournaments whose decklist
// matched no rule.
func (s Service) Unclassified(ctx context.Context, ids ...string) ([]tournament.Player, error) {
	var out []tournament.Player
	for _, id := range ids {
		players, _, err := s.Players(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("players of %s: %w", id, err)
		}
		for _, p := range players {
			if p.Archetype.IsUnown() {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

// Classify reads and classifies a single decklist.
func (s Service) Classify(ctx context.Context, link string) (archetype.Decklist, archetype.Archetype, error) {
	deck, err := s.client.GetDecklist(ctx, link)
	if err != nil {
		return nil, nil, err
	}
	return deck, s.classifier.Classify(deck), nil
}
