package engine

import (
	"context"
	"fmt"

	"habline/internal/events"
	habiticasdk "habline/sdk/go"
)

// BrokenTask is a task still linked to a challenge that is no longer running.
type BrokenTask struct {
	TaskType    string `json:"task_type" yaml:"task_type"`
	Text        string `json:"text" yaml:"text"`
	Notes       string `json:"notes" yaml:"notes"`
	ChallengeID string `json:"challenge_id" yaml:"challenge_id"`
	ShortName   string `json:"challenge" yaml:"challenge"`
	Reason      string `json:"reason" yaml:"reason"`
}

// Challenges lists the challenges the user has joined.
func (e Engine) Challenges(ctx context.Context) ([]habiticasdk.Challenge, error) {
	return e.Remote.Challenges(ctx)
}

// AllTasks returns habits, dailies and open todos in that order.
func (e Engine) AllTasks(ctx context.Context) ([]habiticasdk.Task, error) {
	var all []habiticasdk.Task
	for _, tt := range []habiticasdk.TaskType{habiticasdk.Habits, habiticasdk.Dailies, habiticasdk.Todos} {
		tasks, err := e.Tasks(ctx, tt)
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
	}
	return all, nil
}

// BrokenChallenges finds tasks whose challenge link is broken.
func (e Engine) BrokenChallenges(ctx context.Context) ([]BrokenTask, error) {
	tasks, err := e.AllTasks(ctx)
	if err != nil {
		return nil, err
	}
	var out []BrokenTask
	for _, t := range tasks {
		if t.Challenge.Broken == "" {
			continue
		}
		out = append(out, BrokenTask{
			TaskType:    t.Type,
			Text:        t.Text,
			Notes:       t.Notes,
			ChallengeID: t.Challenge.ID,
			ShortName:   t.Challenge.ShortName,
			Reason:      t.Challenge.Broken,
		})
	}
	return out, nil
}

// CleanChallenges removes the tasks of every closed challenge and returns the
// challenge ids that were unlinked.
func (e Engine) CleanChallenges(ctx context.Context) ([]string, error) {
	broken, err := e.BrokenChallenges(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var cleaned []string
	for _, b := range broken {
		if b.Reason != habiticasdk.ChallengeClosed || b.ChallengeID == "" || seen[b.ChallengeID] {
			continue
		}
		seen[b.ChallengeID] = true
		if err := e.Remote.UnlinkAll(ctx, b.ChallengeID, "remove-all"); err != nil {
			return cleaned, fmt.Errorf("unlink challenge %s: %w", b.ChallengeID, err)
		}
		e.printf("removed tasks of challenge '%s'", b.ShortName)
		e.record(ctx, "challenge.unlinked", "", b.ChallengeID, b.ShortName, events.EventPayload{"keep": "remove-all"})
		cleaned = append(cleaned, b.ChallengeID)
		e.wait()
	}
	return cleaned, nil
}
