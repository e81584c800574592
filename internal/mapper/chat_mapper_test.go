package mapper

import (
	"testing"
	"time"

	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatSessionRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	user := "user-7"
	m := NewChatMapper()

	in := &entity.ChatSession{
		SessionId: "abc",
		UserId:    &user,
		ConversationHistory: []entity.ChatMessage{
			{Role: entity.ChatRoleUser, Content: "hi", Timestamp: now},
			{Role: entity.ChatRoleAssistant, Content: "hello", Timestamp: now.Add(time.Second), Metadata: map[string]interface{}{"items_shown": []interface{}{"1"}}},
		},
		Preferences:   map[string]interface{}{"flavors": []interface{}{"sweet"}},
		CreatedAt:     now,
		LastMessageAt: now.Add(time.Second),
		ExpiresAt:     now.Add(24 * time.Hour),
	}

	mod, err := m.ChatSessionToModel(in)
	require.NoError(t, err)
	out, err := m.ChatSessionToEntity(mod)
	require.NoError(t, err)

	assert.Equal(t, in, out)
}

func TestChatSessionToEntityRejectsCorruptHistory(t *testing.T) {
	_, err := NewChatMapper().ChatSessionToEntity(&model.ChatSession{SessionId: "x", ConversationHistory: []byte("{")})
	assert.Error(t, err)
}
