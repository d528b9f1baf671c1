package habiticasdk

// TaskType names a task list on the service.
type TaskType string

const (
	Habits  TaskType = "habits"
	Dailies TaskType = "dailys"
	Todos   TaskType = "todos"
)

// Direction is the scoring direction of a task.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// PositionBottom is the move target for the end of a list.
const PositionBottom = -1

// ChallengeClosed marks a task whose challenge has ended.
const ChallengeClosed = "CHALLENGE_CLOSED"

// Task represents the API task model (partial).
type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Notes     string          `json:"notes"`
	Value     float64         `json:"value"`
	Priority  float64         `json:"priority,omitempty"`
	Completed bool            `json:"completed"`
	Checklist []ChecklistItem `json:"checklist,omitempty"`
	Challenge ChallengeLink   `json:"challenge"`
}

// ChecklistItem is one entry of a task checklist.
type ChecklistItem struct {
	ID        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// ChallengeLink ties a task to the challenge it came from.
type ChallengeLink struct {
	ID        string `json:"id,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
	ShortName string `json:"shortName,omitempty"`
	Broken    string `json:"broken,omitempty"`
}

// NewTask is the body for creating a task.
type NewTask struct {
	Type     string  `json:"type"`
	Text     string  `json:"text"`
	Notes    string  `json:"notes,omitempty"`
	Priority float64 `json:"priority,omitempty"`
}

// Challenge is a joined challenge.
type Challenge struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

// ServerStatus is the service health response.
type ServerStatus struct {
	Status string `json:"status"`
}

// User holds the parts of the user profile the CLI reports on.
type User struct {
	ID    string    `json:"id"`
	Stats UserStats `json:"stats"`
	Items UserItems `json:"items"`
}

type UserStats struct {
	Level       int     `json:"lvl"`
	Class       string  `json:"class"`
	HP          float64 `json:"hp"`
	MaxHealth   float64 `json:"maxHealth"`
	Exp         float64 `json:"exp"`
	ToNextLevel float64 `json:"toNextLevel"`
	MP          float64 `json:"mp"`
	MaxMP       float64 `json:"maxMP"`
}

type UserItems struct {
	Food         map[string]int `json:"food"`
	CurrentPet   string         `json:"currentPet"`
	CurrentMount string         `json:"currentMount"`
}

// Group is a party or guild.
type Group struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Type  string     `json:"type"`
	Quest GroupQuest `json:"quest"`
}

// GroupQuest is the live quest state of a group.
type GroupQuest struct {
	Key      string        `json:"key"`
	Active   bool          `json:"active"`
	Progress QuestProgress `json:"progress"`
}

// QuestProgress carries boss hit points or collected item counts.
type QuestProgress struct {
	HP      float64            `json:"hp"`
	Collect map[string]float64 `json:"collect"`
}

// Content is the subset of game content the CLI needs.
type Content struct {
	Quests map[string]QuestContent `json:"quests"`
}

// QuestContent is a quest definition.
type QuestContent struct {
	Key     string                   `json:"key"`
	Text    string                   `json:"text"`
	Collect map[string]CollectTarget `json:"collect,omitempty"`
	Boss    *QuestBoss               `json:"boss,omitempty"`
}

type CollectTarget struct {
	Text  string  `json:"text"`
	Count float64 `json:"count"`
}

type QuestBoss struct {
	Name string  `json:"name"`
	HP   float64 `json:"hp"`
}
