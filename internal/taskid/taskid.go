// Package taskid parses the task-id expressions accepted on the command line
// (`3`, `1,2,3`, `2 3`, `1-3,4 8`) into zero-based list indices.
package taskid

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is returned for any literal or range that cannot be parsed.
	ErrMalformed = errors.New("malformed task id")
	// ErrOutOfRange is returned for ids past the end of the list.
	ErrOutOfRange = errors.New("no such task")
)

// Mode selects how parsed indices are returned.
type Mode int

const (
	// Unique returns a sorted set of indices.
	Unique Mode = iota
	// Ordered keeps token order and duplicates.
	Ordered
)

// Parse expands raw tokens into zero-based indices. Ids above limit, the
// length of the list they index, fail with ErrOutOfRange before any range is
// expanded.
func Parse(tokens []string, mode Mode, limit int) ([]int, error) {
	var ids []int
	for _, raw := range tokens {
		for _, bit := range strings.Split(raw, ",") {
			expanded, err := parseBit(bit, limit)
			if err != nil {
				return nil, err
			}
			ids = append(ids, expanded...)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no task ids given", ErrMalformed)
	}
	for i := range ids {
		ids[i]--
	}
	if mode == Unique {
		return uniqueSorted(ids), nil
	}
	return ids, nil
}

func parseBit(bit string, limit int) ([]int, error) {
	bit = strings.TrimSpace(bit)
	if bit == "" {
		return nil, fmt.Errorf("%w: empty id", ErrMalformed)
	}
	if !strings.Contains(bit, "-") {
		n, err := parseLiteral(bit)
		if err != nil {
			return nil, err
		}
		if n > limit {
			return nil, outOfRange(n, limit)
		}
		return []int{n}, nil
	}
	parts := strings.Split(bit, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: bad range %q", ErrMalformed, bit)
	}
	start, err := parseLiteral(parts[0])
	if err != nil {
		return nil, err
	}
	stop, err := parseLiteral(parts[1])
	if err != nil {
		return nil, err
	}
	if start > stop {
		return nil, fmt.Errorf("%w: reversed range %q", ErrMalformed, bit)
	}
	if stop > limit {
		return nil, outOfRange(stop, limit)
	}
	out := make([]int, 0, stop-start+1)
	for n := start; n <= stop; n++ {
		out = append(out, n)
	}
	return out, nil
}

func outOfRange(n, limit int) error {
	return fmt.Errorf("%w: %d (list has %d)", ErrOutOfRange, n, limit)
}

func parseLiteral(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformed, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %d is not a positive id", ErrMalformed, n)
	}
	return n, nil
}

func uniqueSorted(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
