// Package conversation holds the bounded turn log a session feeds to the
// completion backend.
package conversation

import "github.com/vango-go/vai-assistant/pkg/core/types"

// History is an ordered, bounded log of turns. When an append pushes the log
// past its limit the oldest turns are evicted first.
//
// History is owned by a single session and is not safe for concurrent use.
type History struct {
	max   int
	turns []types.Turn
}

// NewHistory creates a history holding at most max turns. Limits below one
// are raised to one.
func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{
		max:   max,
		turns: make([]types.Turn, 0, max),
	}
}

// Append adds turns at the end and evicts the oldest until the limit holds.
func (h *History) Append(turns ...types.Turn) {
	h.turns = append(h.turns, turns...)
	if over := len(h.turns) - h.max; over > 0 {
		// Copy down instead of reslicing so evicted turns are not retained
		// by the backing array.
		n := copy(h.turns, h.turns[over:])
		clear(h.turns[n:])
		h.turns = h.turns[:n]
	}
}

// Recent returns a copy of the last n turns in original order.
func (h *History) Recent(n int) []types.Turn {
	if n <= 0 || len(h.turns) == 0 {
		return []types.Turn{}
	}
	if n > len(h.turns) {
		n = len(h.turns)
	}
	out := make([]types.Turn, n)
	copy(out, h.turns[len(h.turns)-n:])
	return out
}

// Len returns the number of stored turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Max returns the retention limit.
func (h *History) Max() int {
	return h.max
}

// Reset drops every turn.
func (h *History) Reset() {
	clear(h.turns)
	h.turns = h.turns[:0]
}
