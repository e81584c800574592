package filter

import (
	"context"
	"time"

	"yorkie-bakery-be/internal/pkg/logger"
	"yorkie-bakery-be/pkg/llm"
)

const interpreterSystemPrompt = `You convert natural food requests into structured filters.
Return JSON ONLY. If a field is not specified, return null.
Fields:
- origin (e.g., french, japanese, thai, chinese)
- category (e.g., dessert, drink, pastry, bread, entree)
- flavor_profiles (single keyword like sweet, nutty, spicy)
- dietary_features (vegan, vegetarian, gluten_free, contains_dairy)
- price_max (number or null)
- price_min (number or null)`

// LLMInterpreter asks the completion service for a structured filter
// payload and interprets it.
type LLMInterpreter struct {
	provider llm.LLMProvider
	timeout  time.Duration
	logger   logger.ILogger
}

func NewLLMInterpreter(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *LLMInterpreter {
	return &LLMInterpreter{
		provider: provider,
		timeout:  timeout,
		logger:   log,
	}
}

// Interpret never fails. A completion error or malformed payload degrades
// to empty Filters with ok=false.
func (i *LLMInterpreter) Interpret(ctx context.Context, message string) (Filters, bool) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	raw, err := llm.Complete(ctx, i.provider, interpreterSystemPrompt, message, nil,
		llm.WithJSONFormat(),
		llm.WithTemperature(0),
	)
	if err != nil {
		i.logger.Warn("FILTER", "Filter extraction failed, continuing without filters", map[string]interface{}{
			"error": err.Error(),
		})
		return Filters{}, false
	}

	f, ok := Interpret([]byte(raw))
	if !ok {
		i.logger.Warn("FILTER", "Malformed filter payload, continuing without filters", map[string]interface{}{
			"payload": raw,
		})
	}
	return f, ok
}
