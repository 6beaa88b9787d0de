// Package liveinfo decides whether a question needs fresh data and, if so,
// asks a search-backed completion endpoint for it.
package liveinfo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tria-chat-be/internal/pkg/logger"
	"tria-chat-be/pkg/llm"
)

const (
	EmptyAnswer  = "Sorry, I could not get live information at the moment."
	FailedAnswer = "Sorry, I could not access live information right now."
)

var keywords = []string{
	"news", "latest", "current", "today", "now", "recent", "breaking",
	"weather", "temperature", "forecast", "climate",
	"stock", "price", "market", "crypto", "bitcoin",
	"score", "match", "game", "sports", "live",
	"update", "happening", "event", "trending",
	"time", "date", "when", "schedule",
	"traffic", "flight", "status",
}

// NeedsLiveInfo is a case-insensitive substring match against the keyword
// set. "snow" matches "now"; that looseness is accepted.
func NeedsLiveInfo(query string) bool {
	q := strings.ToLower(query)
	for _, k := range keywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// EnhancePrompt frames the query for the search endpoint.
func EnhancePrompt(query, background string) string {
	return fmt.Sprintf("%s\n\nUser query: %s\n\nPlease provide a comprehensive response that includes any relevant live information, current data, or recent updates related to this query.", background, query)
}

type Augmenter struct {
	search llm.LLMProvider
	model  string
	logger logger.ILogger
}

func NewAugmenter(search llm.LLMProvider, model string, log logger.ILogger) *Augmenter {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Augmenter{search: search, model: model, logger: log}
}

func (a *Augmenter) NeedsLiveInfo(query string) bool {
	return NeedsLiveInfo(query)
}

// Lookup never fails; it folds errors into an apology string.
func (a *Augmenter) Lookup(ctx context.Context, query, background string) string {
	answer, err := a.search.Generate(ctx, EnhancePrompt(query, background), llm.WithModel(a.model))
	switch {
	case err == nil:
		return answer
	case errors.Is(err, llm.ErrEmptyResponse):
		return EmptyAnswer
	default:
		a.logger.Warn("LIVEINFO", "Search completion failed", map[string]interface{}{
			"error": err.Error(),
		})
		return FailedAnswer
	}
}
