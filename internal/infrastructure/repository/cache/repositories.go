package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/toto/internal/domain/game"
	"github.com/riskibarqy/toto/internal/domain/outcome"
	"github.com/riskibarqy/toto/internal/domain/roundscore"
	basecache "github.com/riskibarqy/toto/internal/platform/cache"
)

const (
	roundScoresPrefix = "round-scores"
	gamesPrefix       = "games"
)

// RoundScoreRepository caches standings reads. Publish drops every cached
// score view since the season aggregate changes with any round.
type RoundScoreRepository struct {
	next  roundscore.Repository
	cache *basecache.Store
}

func NewRoundScoreRepository(next roundscore.Repository, cache *basecache.Store) *RoundScoreRepository {
	return &RoundScoreRepository{next: next, cache: cache}
}

func (r *RoundScoreRepository) Publish(ctx context.Context, publication roundscore.Publication) error {
	if err := r.next.Publish(ctx, publication); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, roundScoresPrefix+":")
	return nil
}

func (r *RoundScoreRepository) ListByRound(ctx context.Context, roundID string) ([]roundscore.RoundScore, error) {
	key := basecache.Key(roundScoresPrefix, "round", roundID)
	return r.load(ctx, key, func(ctx context.Context) ([]roundscore.RoundScore, error) {
		return r.next.ListByRound(ctx, roundID)
	})
}

func (r *RoundScoreRepository) ListAll(ctx context.Context) ([]roundscore.RoundScore, error) {
	key := basecache.Key(roundScoresPrefix, "all")
	return r.load(ctx, key, r.next.ListAll)
}

func (r *RoundScoreRepository) load(ctx context.Context, key string, loader func(context.Context) ([]roundscore.RoundScore, error)) ([]roundscore.RoundScore, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return append([]roundscore.RoundScore(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]roundscore.RoundScore)
	return append([]roundscore.RoundScore(nil), items...), nil
}

// GameRepository caches slates per round. Writes invalidate the whole game
// namespace because SetResult only knows the game id. The cache is per
// process, so it only fronts reads that tolerate TTL staleness across
// replicas.
type GameRepository struct {
	next  game.Repository
	cache *basecache.Store
}

func NewGameRepository(next game.Repository, cache *basecache.Store) *GameRepository {
	return &GameRepository{next: next, cache: cache}
}

func (r *GameRepository) ListByRound(ctx context.Context, roundID string) ([]game.Game, error) {
	key := basecache.Key(gamesPrefix, "round", roundID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByRound(ctx, roundID)
		if err != nil {
			return nil, err
		}
		return cloneGames(items), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]game.Game)
	return cloneGames(items), nil
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	key := basecache.Key(gamesPrefix, "id", gameID)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, gameID)
		if err != nil {
			return nil, err
		}
		return cachedGameByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return game.Game{}, false, err
	}

	cached, _ := v.(cachedGameByID)
	return cloneGame(cached.value), cached.exists, nil
}

func (r *GameRepository) ReplaceForRound(ctx context.Context, roundID string, games []game.Game) error {
	if err := r.next.ReplaceForRound(ctx, roundID, games); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, gamesPrefix+":")
	return nil
}

func (r *GameRepository) SetResult(ctx context.Context, gameID string, result outcome.Symbol, at time.Time) error {
	if err := r.next.SetResult(ctx, gameID, result, at); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, gamesPrefix+":")
	return nil
}

// Invalidate drops every cached slate and game.
func (r *GameRepository) Invalidate(ctx context.Context) {
	r.cache.DeletePrefix(ctx, gamesPrefix+":")
}

type cachedGameByID struct {
	value  game.Game
	exists bool
}

func cloneGames(items []game.Game) []game.Game {
	out := make([]game.Game, 0, len(items))
	for _, item := range items {
		out = append(out, cloneGame(item))
	}
	return out
}

func cloneGame(item game.Game) game.Game {
	out := item
	if item.Result != nil {
		v := *item.Result
		out.Result = &v
	}
	if item.KickoffAt != nil {
		v := *item.KickoffAt
		out.KickoffAt = &v
	}
	return out
}
