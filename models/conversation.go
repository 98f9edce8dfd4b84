package models

// Conversation roles as sent by chat clients.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a chat transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LastTurns returns at most n of the most recent turns. n <= 0 returns nil.
func LastTurns(turns []Turn, n int) []Turn {
	if n <= 0 {
		return nil
	}
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
