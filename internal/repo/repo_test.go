package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habline/internal/db"
	"habline/internal/domain"
	"habline/internal/events"
	"habline/internal/migrate"
	"habline/internal/repo"
)

func newTestRepo(t *testing.T) (repo.Repo, context.Context) {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	ctx := context.Background()
	_, err = migrate.Migrate(ctx, conn)
	require.NoError(t, err)
	return repo.Repo{DB: conn}, ctx
}

func TestQuestCacheDefaults(t *testing.T) {
	r, ctx := newTestRepo(t)

	c, err := r.QuestCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", c.Key)
	assert.Equal(t, domain.QuestType(""), c.Type)
	assert.Equal(t, float64(domain.UnknownQuestMax), c.Max)
	assert.Equal(t, "", c.Title)
}

func TestQuestCacheRoundTrip(t *testing.T) {
	r, ctx := newTestRepo(t)
	in := domain.QuestCache{Key: "qB", Type: domain.QuestHP, Max: 300, Title: "The Rat King"}

	saved, err := r.SaveQuestCache(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, in, saved)

	raw, err := r.Section(ctx, repo.SectionQuest)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"quest_key":   "qB",
		"quest_type":  "hp",
		"quest_max":   "300",
		"quest_title": "The Rat King",
	}, raw)

	again, err := r.QuestCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, again)
}

func TestSaveQuestCacheOverwrites(t *testing.T) {
	r, ctx := newTestRepo(t)
	_, err := r.SaveQuestCache(ctx, domain.QuestCache{Key: "qA", Type: domain.QuestCollect, Max: 50, Title: "A"})
	require.NoError(t, err)
	_, err = r.SaveQuestCache(ctx, domain.QuestCache{Key: "qB", Type: domain.QuestHP, Max: 12.5, Title: "B"})
	require.NoError(t, err)

	c, err := r.QuestCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.QuestCache{Key: "qB", Type: domain.QuestHP, Max: 12.5, Title: "B"}, c)
}

func TestGetMissing(t *testing.T) {
	r, ctx := newTestRepo(t)
	_, err := r.Get(ctx, repo.SectionQuest, "quest_key")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	require.NoError(t, r.Set(ctx, repo.SectionQuest, "quest_key", "x"))
	v, err := r.Get(ctx, repo.SectionQuest, "quest_key")
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestLatestEvents(t *testing.T) {
	r, ctx := newTestRepo(t)
	w := events.Writer{DB: r.DB, Now: func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }}
	require.NoError(t, w.Append(ctx, "task.moved", "todos", "t1", "moved a", events.EventPayload{"position": 0}))
	require.NoError(t, w.Append(ctx, "task.deleted", "todos", "t2", "deleted b", nil))
	require.NoError(t, w.Append(ctx, "quest.cached", "", "", "cached", nil))

	all, err := r.LatestEvents(ctx, 10, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "quest.cached", all[0].Type)
	assert.Equal(t, "", all[0].TaskType)
	assert.Equal(t, "2024-01-01T00:00:00Z", all[2].TS)
	assert.JSONEq(t, `{"position":0}`, all[2].Payload)

	moved, err := r.LatestEvents(ctx, 10, "task.moved")
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, "t1", moved[0].EntityID)
}
