package types

// Role identifies who produced a Turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// Turn represents one role-tagged message in a conversation.
// Turns are values; copying one never aliases another.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserTurn creates a user turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// AssistantTurn creates an assistant turn.
func AssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text}
}

// SystemTurn creates a system instruction turn.
func SystemTurn(text string) Turn {
	return Turn{Role: RoleSystem, Text: text}
}

// Reply is the typed result of one completion call.
type Reply struct {
	Text          string `json:"text"`
	Audio         []byte `json:"-"`
	AudioMIMEType string `json:"audio_mime_type,omitempty"`
}

// HasAudio reports whether the backend attached synthesized audio.
func (r Reply) HasAudio() bool {
	return len(r.Audio) > 0
}
