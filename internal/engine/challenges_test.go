package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	habiticasdk "habline/sdk/go"
)

func seedChallengeTasks(f *fakeRemote) {
	closed := habiticasdk.ChallengeLink{ID: "c1", ShortName: "run", Broken: habiticasdk.ChallengeClosed}
	f.lists[habiticasdk.Habits] = []habiticasdk.Task{{ID: "h1", Type: "habit", Text: "jog", Challenge: closed}}
	f.lists[habiticasdk.Dailies] = []habiticasdk.Task{
		{ID: "d1", Type: "daily", Text: "stretch", Challenge: closed},
		{ID: "d2", Type: "daily", Text: "read", Challenge: habiticasdk.ChallengeLink{ID: "c2", ShortName: "books", Broken: "TASK_DELETED"}},
	}
	f.lists[habiticasdk.Todos] = []habiticasdk.Task{
		{ID: "t1", Type: "todo", Text: "plain"},
		{ID: "t2", Type: "todo", Text: "done already", Completed: true, Challenge: habiticasdk.ChallengeLink{ID: "c3", Broken: habiticasdk.ChallengeClosed}},
	}
}

func TestBrokenChallenges(t *testing.T) {
	env := newTestEnv(t)
	seedChallengeTasks(env.Remote)

	broken, err := env.Engine.BrokenChallenges(env.Ctx)
	require.NoError(t, err)
	require.Len(t, broken, 3)
	assert.Equal(t, "jog", broken[0].Text)
	assert.Equal(t, "TASK_DELETED", broken[2].Reason)
}

func TestCleanChallengesUnlinksClosedOnce(t *testing.T) {
	env := newTestEnv(t)
	seedChallengeTasks(env.Remote)

	cleaned, err := env.Engine.CleanChallenges(env.Ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, cleaned)
	assert.Contains(t, env.Remote.calls, "unlink c1 remove-all")
	assert.NotContains(t, env.Remote.calls, "unlink c2 remove-all")
	assert.Len(t, *env.Waits, 1)
}
