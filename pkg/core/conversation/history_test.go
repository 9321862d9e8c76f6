package conversation

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/vango-go/vai-assistant/pkg/core/types"
)

func numbered(n int) []types.Turn {
	out := make([]types.Turn, n)
	for i := range out {
		role := types.RoleUser
		if i%2 == 1 {
			role = types.RoleAssistant
		}
		out[i] = types.Turn{Role: role, Text: fmt.Sprintf("turn-%d", i)}
	}
	return out
}

func TestNewHistory_ClampsLimit(t *testing.T) {
	h := NewHistory(0)
	if h.Max() != 1 {
		t.Fatalf("Max() = %d, want 1", h.Max())
	}
	h.Append(types.UserTurn("a"), types.UserTurn("b"))
	if got := h.Recent(5); len(got) != 1 || got[0].Text != "b" {
		t.Fatalf("Recent = %#v, want only the newest turn", got)
	}
}

func TestAppend_EvictsOldestFirst(t *testing.T) {
	h := NewHistory(3)
	for _, turn := range numbered(5) {
		h.Append(turn)
	}
	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	got := h.Recent(10)
	want := numbered(5)[2:]
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Recent(10) = %#v, want %#v", got, want)
	}
}

func TestAppend_BatchLargerThanLimit(t *testing.T) {
	h := NewHistory(2)
	h.Append(numbered(6)...)
	got := h.Recent(2)
	if got[0].Text != "turn-4" || got[1].Text != "turn-5" {
		t.Fatalf("Recent(2) = %#v, want turn-4, turn-5", got)
	}
}

func TestRecent_NeverExceedsBounds(t *testing.T) {
	const limitTurns = 4
	all := numbered(12)
	h := NewHistory(limitTurns)
	for appended := 1; appended <= len(all); appended++ {
		h.Append(all[appended-1])
		for n := -1; n <= 8; n++ {
			got := h.Recent(n)
			limit := min(limitTurns, appended)
			if n < limit {
				limit = max(0, n)
			}
			if len(got) != limit {
				t.Fatalf("after %d appends Recent(%d) returned %d turns, want %d", appended, n, len(got), limit)
			}
			if len(got) == 0 {
				continue
			}
			want := all[appended-len(got) : appended]
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("after %d appends Recent(%d) = %#v, want %#v", appended, n, got, want)
			}
		}
	}
}

func TestRecent_IdempotentAndDetached(t *testing.T) {
	h := NewHistory(5)
	h.Append(numbered(3)...)

	first := h.Recent(3)
	second := h.Recent(3)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated Recent differ: %#v vs %#v", first, second)
	}

	first[0].Text = "mutated"
	if h.Recent(3)[0].Text != "turn-0" {
		t.Fatal("Recent must return a copy")
	}
}

func TestReset(t *testing.T) {
	h := NewHistory(3)
	h.Append(numbered(3)...)
	h.Reset()
	if h.Len() != 0 || len(h.Recent(3)) != 0 {
		t.Fatal("Reset should empty the history")
	}
}
