// Package resolver maps free-form project descriptions to canonical project
// type labels, combining a cheap substring match against the estimate table
// with a classification call to the completion service.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mkraev/presalesd/internal/llm"
	"github.com/mkraev/presalesd/internal/storage"
)

const (
	classifyTimeout     = 10 * time.Second
	classifyTemperature = 0.1
	classifyMaxTokens   = 50
)

// EstimateStore is the slice of the storage layer the resolver needs.
type EstimateStore interface {
	LookupEstimate(query string) (storage.ProjectEstimate, error)
	ListProjectTypes() ([]string, error)
}

// Chatter is the interface for chat completion calls.
type Chatter interface {
	Chat(ctx context.Context, req llm.ChatRequest) (string, error)
}

// Estimate is the answer to a budget/timeline query. ProjectType is either a
// label present in the estimate table, "unknown", or "error".
type Estimate struct {
	ProjectType     string `json:"project_type"`
	BudgetRange     string `json:"budget_range"`
	TypicalTimeline string `json:"typical_timeline"`
	Message         string `json:"message,omitempty"`
}

// Resolver resolves user text to a known project type label.
type Resolver struct {
	store EstimateStore
	llm   Chatter
	model string
}

// New creates a Resolver using the given store, completion client, and model
// name for classification calls.
func New(store EstimateStore, chatter Chatter, model string) *Resolver {
	return &Resolver{store: store, llm: chatter, model: model}
}

// Resolve returns the project type label matching the text, or ok=false when
// no label applies. Lexical matches are tried first, in both directions: the
// text as a fragment of a stored label, then each stored label mentioned
// inside the text. Only a miss on both reaches the classification call. Any
// failure of the completion service degrades to ok=false; classification is
// never fatal to the caller.
func (r *Resolver) Resolve(ctx context.Context, text string) (string, bool) {
	if e, err := r.store.LookupEstimate(text); err == nil {
		return e.ProjectType, true
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("estimate lookup failed", "error", err)
		return "", false
	}

	types, err := r.store.ListProjectTypes()
	if err != nil {
		slog.Warn("listing project types failed", "error", err)
		return "", false
	}
	if len(types) == 0 {
		return "", false
	}

	// A label mentioned anywhere in the text wins without an LLM round trip.
	// The candidate list is lexicographically ordered, so the first hit is
	// deterministic.
	lower := strings.ToLower(text)
	for _, t := range types {
		if strings.Contains(lower, strings.ToLower(t)) {
			return t, true
		}
	}

	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	raw, err := r.llm.Chat(ctx, llm.ChatRequest{
		Model:       r.model,
		Messages:    classifyPrompt(types, text),
		Temperature: classifyTemperature,
		MaxTokens:   classifyMaxTokens,
	})
	if err != nil {
		slog.Warn("classification chat failed", "error", err)
		return "", false
	}

	return matchLabel(types, raw)
}

// matchLabel maps the raw classifier output onto one of the candidate labels:
// exact case-insensitive equality first, then "unknown", then bidirectional
// substring containment taking the first candidate in list order.
func matchLabel(types []string, raw string) (string, bool) {
	answer := strings.ToLower(strings.TrimSpace(raw))
	if answer == "" {
		return "", false
	}

	for _, t := range types {
		if strings.ToLower(t) == answer {
			return t, true
		}
	}

	if answer == "unknown" {
		return "", false
	}

	for _, t := range types {
		lower := strings.ToLower(t)
		if strings.Contains(lower, answer) || strings.Contains(answer, lower) {
			return t, true
		}
	}

	return "", false
}

// Estimate answers a budget/timeline query for a project type or free-form
// description. It never returns an error: a miss yields the fixed "unknown"
// default and a storage failure yields the "error" default, matching the
// degrade-to-text contract of the conversation layer.
func (r *Resolver) Estimate(ctx context.Context, query string) Estimate {
	e, err := r.store.LookupEstimate(query)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Error("estimate lookup failed", "query", query, "error", err)
		return errorEstimate()
	}

	if errors.Is(err, storage.ErrNotFound) {
		label, ok := r.Resolve(ctx, query)
		if !ok {
			return unknownEstimate()
		}
		e, err = r.store.LookupEstimate(label)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return unknownEstimate()
			}
			slog.Error("estimate lookup failed", "query", label, "error", err)
			return errorEstimate()
		}
	}

	return Estimate{
		ProjectType:     e.ProjectType,
		BudgetRange:     e.BudgetRange,
		TypicalTimeline: e.TypicalTimeline,
	}
}

func unknownEstimate() Estimate {
	return Estimate{
		ProjectType:     "unknown",
		BudgetRange:     "Requires more information",
		TypicalTimeline: "Requires more information",
		Message:         "We need more details about your project to provide an accurate estimate.",
	}
}

func errorEstimate() Estimate {
	return Estimate{
		ProjectType:     "error",
		BudgetRange:     "Unavailable",
		TypicalTimeline: "Unavailable",
		Message:         "An error occurred while retrieving the estimate. Please try again later.",
	}
}
