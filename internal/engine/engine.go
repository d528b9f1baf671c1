package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rs/zerolog"

	"habline/internal/events"
	"habline/internal/logging"
	"habline/internal/repo"
	"habline/internal/taskid"
	habiticasdk "habline/sdk/go"
)

const (
	// RequestWait is the pause after every remote mutation in a batch; the
	// service rejects clients that issue them back to back.
	RequestWait = 500 * time.Millisecond
	// TaskValueBase drives the local estimate of a habit's new value.
	TaskValueBase = 0.9747
)

// Priority maps a difficulty name to the task priority multiplier.
var Priority = map[string]float64{
	"easy":   1,
	"medium": 1.5,
	"hard":   2,
}

// ErrNoSuchTask is returned when an index has no task in the current list.
var ErrNoSuchTask = taskid.ErrOutOfRange

// Remote is the part of the Habitica API the engine drives.
type Remote interface {
	Status(ctx context.Context) (habiticasdk.ServerStatus, error)
	User(ctx context.Context) (habiticasdk.User, error)
	Tasks(ctx context.Context, taskType habiticasdk.TaskType) ([]habiticasdk.Task, error)
	CreateTask(ctx context.Context, in habiticasdk.NewTask) (habiticasdk.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ScoreTask(ctx context.Context, id string, dir habiticasdk.Direction) error
	UpdateTask(ctx context.Context, id string, fields map[string]any) (habiticasdk.Task, error)
	MoveTask(ctx context.Context, id string, position int) ([]string, error)
	Parties(ctx context.Context) ([]habiticasdk.Group, error)
	Group(ctx context.Context, id string) (habiticasdk.Group, error)
	Content(ctx context.Context) (habiticasdk.Content, error)
	Challenges(ctx context.Context) ([]habiticasdk.Challenge, error)
	UnlinkAll(ctx context.Context, challengeID, keep string) error
}

type Engine struct {
	Remote Remote
	Repo   repo.Repo
	Events events.Writer
	Log    zerolog.Logger
	// Out receives one line per remote mutation as it happens.
	Out   io.Writer
	Pace  time.Duration
	Sleep func(time.Duration)
}

func New(remote Remote, db *sql.DB, out io.Writer) Engine {
	return Engine{
		Remote: remote,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Log:    logging.Component("engine"),
		Out:    out,
		Pace:   RequestWait,
		Sleep:  time.Sleep,
	}
}

func (e Engine) wait() {
	if e.Pace <= 0 {
		return
	}
	e.Log.Debug().Dur("wait", e.Pace).Msg("pacing")
	if e.Sleep != nil {
		e.Sleep(e.Pace)
		return
	}
	time.Sleep(e.Pace)
}

func (e Engine) printf(format string, args ...any) {
	if e.Out == nil {
		return
	}
	fmt.Fprintf(e.Out, format+"\n", args...)
}

func (e Engine) record(ctx context.Context, evtType string, taskType habiticasdk.TaskType, entityID, summary string, payload events.EventPayload) {
	if err := e.Events.Append(ctx, evtType, string(taskType), entityID, summary, payload); err != nil {
		e.Log.Warn().Err(err).Str("type", evtType).Msg("record event")
	}
}

// resolve maps every index to its task before anything is sent, so a bad
// index fails the whole command.
func resolve(tasks []habiticasdk.Task, ids []int) ([]habiticasdk.Task, error) {
	out := make([]habiticasdk.Task, 0, len(ids))
	for _, id := range ids {
		if id < 0 || id >= len(tasks) {
			return nil, fmt.Errorf("%w: %d (list has %d)", ErrNoSuchTask, id+1, len(tasks))
		}
		out = append(out, tasks[id])
	}
	return out, nil
}

func parseUnique(tasks []habiticasdk.Task, tokens []string) ([]int, error) {
	ids, err := taskid.Parse(tokens, taskid.Unique, len(tasks))
	if err != nil {
		return nil, err
	}
	if _, err := resolve(tasks, ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Tasks fetches one task list. Todos are limited to open ones.
func (e Engine) Tasks(ctx context.Context, taskType habiticasdk.TaskType) ([]habiticasdk.Task, error) {
	tasks, err := e.Remote.Tasks(ctx, taskType)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", taskType, err)
	}
	if taskType != habiticasdk.Todos {
		return tasks, nil
	}
	open := tasks[:0]
	for _, t := range tasks {
		if !t.Completed {
			open = append(open, t)
		}
	}
	return open, nil
}

// ScoreHabits scores habits up or down and updates their local values.
func (e Engine) ScoreHabits(ctx context.Context, habits []habiticasdk.Task, tokens []string, dir habiticasdk.Direction) ([]habiticasdk.Task, error) {
	ids, err := parseUnique(habits, tokens)
	if err != nil {
		return habits, err
	}
	for _, id := range ids {
		t := &habits[id]
		if err := e.Remote.ScoreTask(ctx, t.ID, dir); err != nil {
			return habits, fmt.Errorf("task %d: %w", id+1, err)
		}
		delta := math.Pow(TaskValueBase, t.Value)
		if dir == habiticasdk.Down {
			delta = -delta
			e.printf("decremented task '%s'", t.Text)
		} else {
			e.printf("incremented task '%s'", t.Text)
		}
		t.Value += delta
		e.record(ctx, "task.scored", habiticasdk.Habits, t.ID, t.Text, events.EventPayload{"direction": string(dir)})
		e.wait()
	}
	return habits, nil
}

// CompleteDailies marks dailies completed.
func (e Engine) CompleteDailies(ctx context.Context, dailies []habiticasdk.Task, tokens []string) ([]habiticasdk.Task, error) {
	ids, err := parseUnique(dailies, tokens)
	if err != nil {
		return dailies, err
	}
	for _, id := range ids {
		t := &dailies[id]
		if err := e.Remote.ScoreTask(ctx, t.ID, habiticasdk.Up); err != nil {
			return dailies, fmt.Errorf("task %d: %w", id+1, err)
		}
		t.Completed = true
		e.printf("marked daily '%s' completed", t.Text)
		e.record(ctx, "task.completed", habiticasdk.Dailies, t.ID, t.Text, nil)
		e.wait()
	}
	return dailies, nil
}

// UndoDailies marks dailies incomplete.
func (e Engine) UndoDailies(ctx context.Context, dailies []habiticasdk.Task, tokens []string) ([]habiticasdk.Task, error) {
	ids, err := parseUnique(dailies, tokens)
	if err != nil {
		return dailies, err
	}
	for _, id := range ids {
		t := &dailies[id]
		if _, err := e.Remote.UpdateTask(ctx, t.ID, map[string]any{"completed": false}); err != nil {
			return dailies, fmt.Errorf("task %d: %w", id+1, err)
		}
		t.Completed = false
		e.printf("marked daily '%s' incomplete", t.Text)
		e.record(ctx, "task.reopened", habiticasdk.Dailies, t.ID, t.Text, nil)
		e.wait()
	}
	return dailies, nil
}

// CompleteTodos completes todos and drops them from the returned list.
func (e Engine) CompleteTodos(ctx context.Context, todos []habiticasdk.Task, tokens []string) ([]habiticasdk.Task, error) {
	return e.removeTodos(ctx, todos, tokens, func(t habiticasdk.Task) error {
		if err := e.Remote.ScoreTask(ctx, t.ID, habiticasdk.Up); err != nil {
			return err
		}
		e.printf("marked todo '%s' complete", t.Text)
		e.record(ctx, "task.completed", habiticasdk.Todos, t.ID, t.Text, nil)
		return nil
	})
}

// DeleteTodos deletes todos and drops them from the returned list.
func (e Engine) DeleteTodos(ctx context.Context, todos []habiticasdk.Task, tokens []string) ([]habiticasdk.Task, error) {
	return e.removeTodos(ctx, todos, tokens, func(t habiticasdk.Task) error {
		if err := e.Remote.DeleteTask(ctx, t.ID); err != nil {
			return err
		}
		e.printf("deleted todo '%s'", t.Text)
		e.record(ctx, "task.deleted", habiticasdk.Todos, t.ID, t.Text, nil)
		return nil
	})
}

func (e Engine) removeTodos(ctx context.Context, todos []habiticasdk.Task, tokens []string, apply func(habiticasdk.Task) error) ([]habiticasdk.Task, error) {
	ids, err := parseUnique(todos, tokens)
	if err != nil {
		return todos, err
	}
	var done []int
	var applyErr error
	for _, id := range ids {
		if err := apply(todos[id]); err != nil {
			applyErr = fmt.Errorf("task %d: %w", id+1, err)
			break
		}
		done = append(done, id)
		e.wait()
	}
	return without(todos, done), applyErr
}

// without drops the given ascending indices from tasks.
func without(tasks []habiticasdk.Task, ids []int) []habiticasdk.Task {
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		tasks = append(tasks[:id], tasks[id+1:]...)
	}
	return tasks
}

// AddTodo creates a todo and puts it at the top of the local list.
func (e Engine) AddTodo(ctx context.Context, todos []habiticasdk.Task, text, difficulty string) ([]habiticasdk.Task, error) {
	if text == "" {
		return todos, errors.New("todo text is required")
	}
	priority, ok := Priority[difficulty]
	if !ok {
		return todos, fmt.Errorf("unknown difficulty %q (easy, medium, hard)", difficulty)
	}
	created, err := e.Remote.CreateTask(ctx, habiticasdk.NewTask{Type: "todo", Text: text, Priority: priority})
	if err != nil {
		return todos, fmt.Errorf("add todo: %w", err)
	}
	if created.Text == "" {
		created.Text = text
	}
	e.printf("added new todo '%s'", text)
	e.record(ctx, "task.created", habiticasdk.Todos, created.ID, text, events.EventPayload{"priority": priority})
	return append([]habiticasdk.Task{created}, todos...), nil
}

// ServerUp reports whether the remote service is reachable and up.
func (e Engine) ServerUp(ctx context.Context) (bool, error) {
	st, err := e.Remote.Status(ctx)
	if err != nil {
		return false, err
	}
	return st.Status == "up", nil
}
