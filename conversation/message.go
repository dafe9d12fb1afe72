package conversation

import "github.com/google/uuid"

// Role identifies who authored a Message.
type Role string

// Message roles.
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
	}
	return false
}

// Message is one entry of a conversation transcript. ID is only used to
// address the message for removal during compaction.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage returns a message with a fresh UUID.
func NewMessage(role Role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content}
}

// UserMessage is shorthand for NewMessage(RoleUser, content).
func UserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// AssistantMessage is shorthand for NewMessage(RoleAssistant, content).
func AssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}
