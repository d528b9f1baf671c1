// Package quest tracks the party's active quest and keeps a local cache of the
// quest definition so the large content document is only fetched when the
// quest changes.
package quest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"habline/internal/domain"
	habiticasdk "habline/sdk/go"
)

// DefaultQuest is shown when the party has no active quest.
const DefaultQuest = "Not currently on a quest"

var (
	// ErrUnknownQuestType means a quest definition is neither a collect nor a boss quest.
	ErrUnknownQuestType = errors.New("unknown quest type")
	// ErrMultipleCollectTargets marks collect quests with more than one item target.
	ErrMultipleCollectTargets = fmt.Errorf("%w: multiple collection targets", ErrUnknownQuestType)
)

// State is a step of the quest tracker.
type State int

const (
	NoQuest State = iota
	Cached
	Stale
	UnknownType
)

func (s State) String() string {
	switch s {
	case NoQuest:
		return "no-quest"
	case Cached:
		return "cached"
	case Stale:
		return "stale"
	case UnknownType:
		return "unknown-type"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Source is the remote side of the tracker.
type Source interface {
	Group(ctx context.Context, id string) (habiticasdk.Group, error)
	Content(ctx context.Context) (habiticasdk.Content, error)
}

// Store persists the quest cache.
type Store interface {
	QuestCache(ctx context.Context) (domain.QuestCache, error)
	SaveQuestCache(ctx context.Context, c domain.QuestCache) (domain.QuestCache, error)
}

// Result is the outcome of one status query.
type Result struct {
	State     State
	Path      []State
	Refreshed bool
	Cache     domain.QuestCache
	Progress  float64
}

// String renders progress as `12/50 "Title"`.
func (r Result) String() string {
	if r.State != Cached {
		return DefaultQuest
	}
	return fmt.Sprintf("%d/%s \"%s\"", int(r.Progress), r.Cache.MaxString(), r.Cache.Title)
}

type Tracker struct {
	Source Source
	Store  Store
	Log    zerolog.Logger
}

func (t Tracker) enter(res *Result, s State) {
	res.State = s
	res.Path = append(res.Path, s)
	t.Log.Debug().Stringer("state", s).Msg("quest state")
}

// Check fetches the live quest of a party and returns its progress, refreshing
// the cache when the quest key differs from the cached one. Classification
// failures return ErrUnknownQuestType with the result in state UnknownType;
// any other error comes from the remote service or the store.
func (t Tracker) Check(ctx context.Context, partyID string) (Result, error) {
	var res Result
	group, err := t.Source.Group(ctx, partyID)
	if err != nil {
		return res, fmt.Errorf("fetch party: %w", err)
	}
	live := group.Quest
	if !live.Active || live.Key == "" {
		t.enter(&res, NoQuest)
		return res, nil
	}
	cache, err := t.Store.QuestCache(ctx)
	if err != nil {
		return res, err
	}
	if cache.Key != live.Key {
		t.enter(&res, Stale)
		t.Log.Info().Str("quest", live.Key).Str("cached", cache.Key).Msg("updating quest information")
		cache, err = t.refresh(ctx, live.Key)
		if err != nil {
			if errors.Is(err, ErrUnknownQuestType) {
				t.enter(&res, UnknownType)
			}
			return res, err
		}
		res.Refreshed = true
	}
	t.enter(&res, Cached)
	res.Cache = cache

	progress, err := progressOf(cache.Type, live.Progress)
	if err != nil {
		t.enter(&res, UnknownType)
		return res, err
	}
	res.Progress = progress
	return res, nil
}

func (t Tracker) refresh(ctx context.Context, key string) (domain.QuestCache, error) {
	content, err := t.Source.Content(ctx)
	if err != nil {
		return domain.QuestCache{}, fmt.Errorf("fetch content: %w", err)
	}
	def, ok := content.Quests[key]
	if !ok {
		return domain.QuestCache{}, fmt.Errorf("%w: quest %q not in content", ErrUnknownQuestType, key)
	}
	qt, target, err := Classify(def)
	if err != nil {
		// Remember the key with no type so the content is not fetched again
		// for the same quest.
		if _, saveErr := t.Store.SaveQuestCache(ctx, domain.QuestCache{
			Key:   key,
			Max:   domain.UnknownQuestMax,
			Title: def.Text,
		}); saveErr != nil {
			return domain.QuestCache{}, fmt.Errorf("save quest cache: %w", saveErr)
		}
		return domain.QuestCache{}, fmt.Errorf("quest %q: %w", key, err)
	}
	t.Log.Debug().Str("quest", key).Str("type", string(qt)).Float64("max", target).Msg("classified quest")
	return t.Store.SaveQuestCache(ctx, domain.QuestCache{
		Key:   key,
		Type:  qt,
		Max:   target,
		Title: def.Text,
	})
}

// Classify returns the quest type and completion target of a definition.
// Collect targets take precedence over a boss.
func Classify(def habiticasdk.QuestContent) (domain.QuestType, float64, error) {
	switch {
	case len(def.Collect) > 1:
		return "", domain.UnknownQuestMax, ErrMultipleCollectTargets
	case len(def.Collect) == 1:
		for _, target := range def.Collect {
			return domain.QuestCollect, target.Count, nil
		}
	case def.Boss != nil:
		return domain.QuestHP, def.Boss.HP, nil
	}
	return "", domain.UnknownQuestMax, ErrUnknownQuestType
}

func progressOf(qt domain.QuestType, p habiticasdk.QuestProgress) (float64, error) {
	switch qt {
	case domain.QuestCollect:
		if len(p.Collect) > 1 {
			return 0, ErrMultipleCollectTargets
		}
		for _, n := range p.Collect {
			return n, nil
		}
		return 0, nil
	case domain.QuestHP:
		return p.HP, nil
	}
	if qt == "" {
		return 0, fmt.Errorf("%w: quest not recognised", ErrUnknownQuestType)
	}
	return 0, fmt.Errorf("%w: cached type %q", ErrUnknownQuestType, qt)
}
