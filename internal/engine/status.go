package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"habline/internal/events"
	"habline/internal/quest"
	"habline/internal/render"
)

const (
	DefaultParty = "Not currently in a party"
	DefaultPet   = "No pet currently"
	DefaultMount = "Not currently mounted"
)

// Report is the user's status summary.
type Report struct {
	Title      string `json:"title" yaml:"title"`
	Health     string `json:"health" yaml:"health"`
	XP         string `json:"xp" yaml:"xp"`
	Mana       string `json:"mana" yaml:"mana"`
	Pet        string `json:"pet" yaml:"pet"`
	Mount      string `json:"mount" yaml:"mount"`
	Party      string `json:"party" yaml:"party"`
	Quest      string `json:"quest" yaml:"quest"`
	QuestState string `json:"quest_state" yaml:"quest_state"`
}

// Fields lists the report lines in display order.
func (r Report) Fields() []render.Field {
	return []render.Field{
		{Label: "Health", Value: r.Health},
		{Label: "XP", Value: r.XP},
		{Label: "Mana", Value: r.Mana},
		{Label: "Pet", Value: r.Pet},
		{Label: "Mount", Value: r.Mount},
		{Label: "Party", Value: r.Party},
		{Label: "Quest", Value: r.Quest},
	}
}

// Status builds the status report, including party quest progress.
func (e Engine) Status(ctx context.Context) (Report, error) {
	user, err := e.Remote.User(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("fetch user: %w", err)
	}
	st := user.Stats
	food := 0
	for _, n := range user.Items.Food {
		food += n
	}
	pet := user.Items.CurrentPet
	if pet == "" {
		pet = DefaultPet
	}
	mount := user.Items.CurrentMount
	if mount == "" {
		mount = DefaultMount
	}
	r := Report{
		Title:      fmt.Sprintf("Level %d %s", st.Level, capitalize(st.Class)),
		Health:     fmt.Sprintf("%d/%d", int(st.HP), int(st.MaxHealth)),
		XP:         fmt.Sprintf("%d/%d", int(st.Exp), int(st.ToNextLevel)),
		Mana:       fmt.Sprintf("%d/%d", int(st.MP), int(st.MaxMP)),
		Pet:        fmt.Sprintf("%s (%d food items)", pet, food),
		Mount:      mount,
		Party:      DefaultParty,
		Quest:      quest.DefaultQuest,
		QuestState: quest.NoQuest.String(),
	}

	parties, err := e.Remote.Parties(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("fetch party: %w", err)
	}
	if len(parties) == 0 {
		return r, nil
	}
	party := parties[0]
	r.Party = party.Name

	tracker := quest.Tracker{Source: e.Remote, Store: e.Repo, Log: e.Log.With().Str("party", party.ID).Logger()}
	res, err := tracker.Check(ctx, party.ID)
	r.QuestState = res.State.String()
	switch {
	case errors.Is(err, quest.ErrUnknownQuestType):
		e.Log.Warn().Err(err).Msg("quest progress unavailable")
		r.Quest = "unavailable (" + err.Error() + ")"
		return r, nil
	case err != nil:
		return Report{}, err
	}
	if res.Refreshed {
		e.record(ctx, "quest.cached", "", res.Cache.Key, res.Cache.Title, events.EventPayload{
			"quest_type": string(res.Cache.Type),
			"quest_max":  res.Cache.MaxString(),
		})
	}
	r.Quest = res.String()
	return r, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
