package types

import "testing"

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAssistant, RoleSystem} {
		if !r.Valid() {
			t.Fatalf("role %q should be valid", r)
		}
	}
	if Role("model").Valid() {
		t.Fatal("role model should not be valid")
	}
}

func TestTurnConstructors(t *testing.T) {
	if got := UserTurn("hi"); got.Role != RoleUser || got.Text != "hi" {
		t.Fatalf("UserTurn = %#v", got)
	}
	if got := AssistantTurn("hello"); got.Role != RoleAssistant {
		t.Fatalf("AssistantTurn role = %q", got.Role)
	}
	if got := SystemTurn("be brief"); got.Role != RoleSystem {
		t.Fatalf("SystemTurn role = %q", got.Role)
	}
}

func TestReplyHasAudio(t *testing.T) {
	if (Reply{Text: "x"}).HasAudio() {
		t.Fatal("reply without audio reported audio")
	}
	if !(Reply{Audio: []byte{1}}).HasAudio() {
		t.Fatal("reply with audio reported none")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59, "0:59"},
		{60, "1:00"},
		{184, "3:04"},
		{3725, "62:05"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
	if got := (Track{DurationSeconds: 184}).Duration(); got != "3:04" {
		t.Errorf("Track.Duration() = %q, want 3:04", got)
	}
}
