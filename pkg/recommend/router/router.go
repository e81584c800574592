// Package router picks the handling strategy for a conversational turn.
package router

import (
	"strings"

	"yorkie-bakery-be/pkg/recommend/filter"
)

type AgentKind string

const (
	RecommendationAgent AgentKind = "RecommendationAgent"
	ChatAgent           AgentKind = "ChatAgent"
)

var recommendationKeywords = []string{
	"recommend",
	"suggest",
	"something to eat",
	"what should i get",
}

// Route selects RecommendationAgent when any filter is set or the message
// asks for a suggestion, and ChatAgent otherwise.
func Route(message string, filters filter.Filters) AgentKind {
	if !filters.IsEmpty() {
		return RecommendationAgent
	}

	lower := strings.ToLower(message)
	for _, k := range recommendationKeywords {
		if strings.Contains(lower, k) {
			return RecommendationAgent
		}
	}
	return ChatAgent
}

func (k AgentKind) NeedsRetrieval() bool {
	return k == RecommendationAgent
}
