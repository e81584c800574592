package entity

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMessageKeepsLastTwenty(t *testing.T) {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	s := &ChatSession{SessionId: "s1"}

	for i := 0; i < 21; i++ {
		s.AddMessage(ChatMessage{Role: ChatRoleUser, Content: fmt.Sprintf("m%d", i), Timestamp: base.Add(time.Duration(i) * time.Second)})
		require.LessOrEqual(t, len(s.ConversationHistory), MaxConversationHistory)
	}

	require.Len(t, s.ConversationHistory, MaxConversationHistory)
	assert.Equal(t, "m1", s.ConversationHistory[0].Content)
	assert.Equal(t, "m20", s.ConversationHistory[19].Content)
	assert.Equal(t, base.Add(20*time.Second), s.LastMessageAt)
	for i := 1; i < len(s.ConversationHistory); i++ {
		assert.True(t, s.ConversationHistory[i-1].Timestamp.Before(s.ConversationHistory[i].Timestamp))
	}
}

func TestRecentMessages(t *testing.T) {
	s := &ChatSession{}
	for i := 0; i < 5; i++ {
		s.AddMessage(ChatMessage{Content: fmt.Sprintf("m%d", i)})
	}

	got := s.RecentMessages(2)
	require.Len(t, got, 2)
	assert.Equal(t, "m3", got[0].Content)
	assert.Equal(t, "m4", got[1].Content)

	assert.Len(t, s.RecentMessages(50), 5)
	assert.Empty(t, s.RecentMessages(0))

	got[0].Content = "changed"
	assert.Equal(t, "m3", s.ConversationHistory[3].Content)
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &ChatSession{ExpiresAt: now}

	assert.True(t, s.IsExpired(now))
	assert.True(t, s.IsExpired(now.Add(time.Second)))
	assert.False(t, s.IsExpired(now.Add(-time.Second)))
}
