package domain

import "strconv"

// QuestType classifies how a quest's progress is measured.
type QuestType string

const (
	QuestCollect QuestType = "collect"
	QuestHP      QuestType = "hp"
)

// UnknownQuestMax is stored while a quest's target is not known.
const UnknownQuestMax = -1

// QuestCache is the persisted description of the quest last seen on the party.
// An empty Key means no quest has been cached.
type QuestCache struct {
	Key   string    `json:"quest_key" yaml:"quest_key"`
	Type  QuestType `json:"quest_type,omitempty" yaml:"quest_type,omitempty"`
	Max   float64   `json:"quest_max" yaml:"quest_max"`
	Title string    `json:"quest_title,omitempty" yaml:"quest_title,omitempty"`
}

// MaxString renders the quest target the way it is stored and displayed.
func (c QuestCache) MaxString() string {
	return strconv.FormatFloat(c.Max, 'f', -1, 64)
}

// Event is a local record of a remote mutation issued by the CLI.
type Event struct {
	ID       int64  `json:"id" yaml:"id"`
	TS       string `json:"ts" yaml:"ts"`
	Type     string `json:"type" yaml:"type"`
	TaskType string `json:"task_type,omitempty" yaml:"task_type,omitempty"`
	EntityID string `json:"entity_id,omitempty" yaml:"entity_id,omitempty"`
	Summary  string `json:"summary" yaml:"summary"`
	Payload  string `json:"payload_json" yaml:"payload_json"`
}
