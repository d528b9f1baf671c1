package engine

import (
	"context"
	"fmt"

	"habline/internal/events"
	"habline/internal/taskid"
	habiticasdk "habline/sdk/go"
)

type destKind int

const (
	destTop destKind = iota
	destBottom
	destPosition
)

// Destination is where Move puts tasks.
type Destination struct {
	kind destKind
	pos  int
}

func ToTop() Destination    { return Destination{kind: destTop} }
func ToBottom() Destination { return Destination{kind: destBottom} }

// ToPosition targets a 1-based slot in the list.
func ToPosition(pos int) (Destination, error) {
	if pos < 1 {
		return Destination{}, fmt.Errorf("%w: position %d", taskid.ErrMalformed, pos)
	}
	return Destination{kind: destPosition, pos: pos}, nil
}

// Position is the zero-based position sent to the service.
func (d Destination) Position() int {
	switch d.kind {
	case destBottom:
		return habiticasdk.PositionBottom
	case destPosition:
		return d.pos - 1
	}
	return 0
}

func (d Destination) String() string {
	switch d.kind {
	case destBottom:
		return "bottom"
	case destPosition:
		return fmt.Sprintf("position %d", d.pos)
	}
	return "top"
}

// Move sends each selected task to dest, one request at a time and in the
// order given, so later moves see the effect of earlier ones. Indices are
// resolved against tasks before the first request. tasks is not updated and
// should be discarded afterwards.
func (e Engine) Move(ctx context.Context, taskType habiticasdk.TaskType, tasks []habiticasdk.Task, tokens []string, dest Destination) error {
	ids, err := taskid.Parse(tokens, taskid.Ordered, len(tasks))
	if err != nil {
		return err
	}
	selected, err := resolve(tasks, ids)
	if err != nil {
		return err
	}
	for i, t := range selected {
		e.printf("moving %s to %s", t.Text, dest)
		if _, err := e.Remote.MoveTask(ctx, t.ID, dest.Position()); err != nil {
			return fmt.Errorf("task %d: %w", ids[i]+1, err)
		}
		e.record(ctx, "task.moved", taskType, t.ID, t.Text, events.EventPayload{"position": dest.Position()})
		e.wait()
	}
	return nil
}
