package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habline/internal/domain"
	"habline/internal/engine"
	"habline/internal/quest"
	habiticasdk "habline/sdk/go"
)

func statusUser() habiticasdk.User {
	return habiticasdk.User{
		Stats: habiticasdk.UserStats{Level: 12, Class: "wizard", HP: 42.6, MaxHealth: 50, Exp: 120.2, ToNextLevel: 300, MP: 33.9, MaxMP: 60},
		Items: habiticasdk.UserItems{Food: map[string]int{"Meat": 2, "Milk": 3}, CurrentPet: "Wolf-Base"},
	}
}

func ratKing() habiticasdk.Content {
	return habiticasdk.Content{Quests: map[string]habiticasdk.QuestContent{
		"rat":  {Key: "rat", Text: "The Rat King", Boss: &habiticasdk.QuestBoss{HP: 300}},
		"void": {Key: "void", Text: "Void"},
	}}
}

func TestStatusWithoutParty(t *testing.T) {
	env := newTestEnv(t)
	env.Remote.user = statusUser()

	r, err := env.Engine.Status(env.Ctx)
	require.NoError(t, err)
	assert.Equal(t, "Level 12 Wizard", r.Title)
	assert.Equal(t, "42/50", r.Health)
	assert.Equal(t, "120/300", r.XP)
	assert.Equal(t, "33/60", r.Mana)
	assert.Equal(t, "Wolf-Base (5 food items)", r.Pet)
	assert.Equal(t, engine.DefaultMount, r.Mount)
	assert.Equal(t, engine.DefaultParty, r.Party)
	assert.Equal(t, quest.DefaultQuest, r.Quest)
	assert.NotContains(t, env.Remote.calls, "content")
}

func TestStatusCachesQuestOnce(t *testing.T) {
	env := newTestEnv(t)
	env.Remote.user = statusUser()
	env.Remote.parties = []habiticasdk.Group{{ID: "p1", Name: "Fellowship"}}
	env.Remote.group = habiticasdk.Group{ID: "p1", Name: "Fellowship", Quest: habiticasdk.GroupQuest{
		Key: "rat", Active: true, Progress: habiticasdk.QuestProgress{HP: 180.4},
	}}
	env.Remote.content = ratKing()

	first, err := env.Engine.Status(env.Ctx)
	require.NoError(t, err)
	second, err := env.Engine.Status(env.Ctx)
	require.NoError(t, err)

	assert.Equal(t, "Fellowship", second.Party)
	assert.Equal(t, `180/300 "The Rat King"`, second.Quest)
	assert.Equal(t, first.Quest, second.Quest)
	assert.Equal(t, "cached", second.QuestState)
	assert.Equal(t, 1, env.Remote.contentCalls)

	cached, err := env.Engine.Repo.QuestCache(env.Ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.QuestCache{Key: "rat", Type: domain.QuestHP, Max: 300, Title: "The Rat King"}, cached)

	evts, err := env.Engine.Repo.LatestEvents(env.Ctx, 10, "quest.cached")
	require.NoError(t, err)
	assert.Len(t, evts, 1)
}

func TestStatusUnknownQuestIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	env.Remote.user = statusUser()
	env.Remote.parties = []habiticasdk.Group{{ID: "p1", Name: "Fellowship"}}
	env.Remote.group = habiticasdk.Group{ID: "p1", Quest: habiticasdk.GroupQuest{Key: "void", Active: true}}
	env.Remote.content = ratKing()

	r, err := env.Engine.Status(env.Ctx)
	require.NoError(t, err)
	assert.Contains(t, r.Quest, "unavailable")
	assert.Equal(t, "unknown-type", r.QuestState)
}

func TestStatusServerUp(t *testing.T) {
	env := newTestEnv(t)
	up, err := env.Engine.ServerUp(env.Ctx)
	require.NoError(t, err)
	assert.True(t, up)
}
