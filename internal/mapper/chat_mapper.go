package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"yorkie-bakery-be/internal/entity"
	"yorkie-bakery-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// chatMessageRecord is the JSON shape of one history entry.
type chatMessageRecord struct {
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) (*entity.ChatSession, error) {
	if s == nil {
		return nil, nil
	}

	var records []chatMessageRecord
	if len(s.ConversationHistory) > 0 {
		if err := json.Unmarshal(s.ConversationHistory, &records); err != nil {
			return nil, fmt.Errorf("decode history of session %s: %w", s.SessionId, err)
		}
	}

	history := make([]entity.ChatMessage, len(records))
	for i, r := range records {
		history[i] = entity.ChatMessage{
			Role:      r.Role,
			Content:   r.Content,
			Timestamp: r.Timestamp,
			Metadata:  r.Metadata,
		}
	}

	prefs := make(map[string]interface{}, len(s.Preferences))
	for k, v := range s.Preferences {
		prefs[k] = v
	}

	return &entity.ChatSession{
		SessionId:           s.SessionId,
		UserId:              s.UserId,
		ConversationHistory: history,
		Preferences:         prefs,
		CreatedAt:           s.CreatedAt,
		LastMessageAt:       s.LastMessageAt,
		ExpiresAt:           s.ExpiresAt,
	}, nil
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) (*model.ChatSession, error) {
	if s == nil {
		return nil, nil
	}

	records := make([]chatMessageRecord, len(s.ConversationHistory))
	for i, msg := range s.ConversationHistory {
		records[i] = chatMessageRecord{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
			Metadata:  msg.Metadata,
		}
	}
	history, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode history of session %s: %w", s.SessionId, err)
	}

	prefs := datatypes.JSONMap{}
	for k, v := range s.Preferences {
		prefs[k] = v
	}

	return &model.ChatSession{
		SessionId:           s.SessionId,
		UserId:              s.UserId,
		ConversationHistory: datatypes.JSON(history),
		Preferences:         prefs,
		CreatedAt:           s.CreatedAt,
		LastMessageAt:       s.LastMessageAt,
		ExpiresAt:           s.ExpiresAt,
	}, nil
}
