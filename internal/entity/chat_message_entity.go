package entity

import "time"

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

type ChatMessage struct {
	Role      string
	Content   string
	Timestamp time.Time
	Metadata  map[string]interface{}
}
