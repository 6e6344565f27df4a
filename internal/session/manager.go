package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mkraev/presalesd/internal/extract"
	"github.com/mkraev/presalesd/internal/llm"
	"github.com/mkraev/presalesd/internal/storage"
)

// Budget-related keywords route a turn to the estimate lookup instead of the
// completion service.
var budgetKeywords = []string{"budget", "timeline", "estimate", "cost"}

// Closing phrases in the latest user turn, together with a transcript of at
// least minTurnsForCapture turns, trigger lead extraction.
var closingPhrases = []string{"thank you", "thanks for your help", "that's all", "goodbye", "bye"}

const minTurnsForCapture = 6

const estimateReplyTemplate = "I've checked our database for %s projects. Here's what I found:\n\n" +
	"- Budget Range: %s\n" +
	"- Typical Timeline: %s\n\n" +
	"These are typical ranges based on our past projects. The actual budget and timeline " +
	"may vary depending on your specific requirements."

// Resolver maps free text to a canonical project type.
type Resolver interface {
	Resolve(ctx context.Context, text string) (string, bool)
}

// Store is the slice of the storage layer the conversation needs.
type Store interface {
	LookupEstimate(query string) (storage.ProjectEstimate, error)
	SaveLead(l storage.Lead) (int64, error)
}

// Chatter is the interface for chat completion calls.
type Chatter interface {
	Chat(ctx context.Context, req llm.ChatRequest) (string, error)
}

// Extractor pulls lead info from a transcript.
type Extractor interface {
	Extract(ctx context.Context, transcript string) extract.Info
}

// Config carries the completion parameters for conversational replies.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = "gpt-4o-mini"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1024
	}
	return c
}

// Manager orchestrates conversation turns across all sessions.
type Manager struct {
	registry  *Registry
	resolver  Resolver
	store     Store
	extractor Extractor
	llm       Chatter
	cfg       Config
}

// NewManager wires a Manager. The registry is shared with the server so the
// eviction sweeper can run against it.
func NewManager(registry *Registry, resolver Resolver, store Store, extractor Extractor, chatter Chatter, cfg Config) *Manager {
	return &Manager{
		registry:  registry,
		resolver:  resolver,
		store:     store,
		extractor: extractor,
		llm:       chatter,
		cfg:       cfg.withDefaults(),
	}
}

// HandleTurn processes one user message for the given client and returns the
// reply. Failures never escape: they degrade to an apology reply while the
// user turn stays recorded, so a retried turn does not lose history.
func (m *Manager) HandleTurn(ctx context.Context, clientID, text string) string {
	sess := m.registry.GetOrCreate(clientID)
	sess.Append(RoleUser, text)

	reply, err := m.reply(ctx, sess, text)
	if err != nil {
		slog.Error("turn failed", "client_id", clientID, "error", err)
		return fmt.Sprintf("I'm sorry, I encountered an error: %v", err)
	}

	sess.Append(RoleAssistant, reply)
	return reply
}

func (m *Manager) reply(ctx context.Context, sess *Session, text string) (string, error) {
	if containsAny(text, budgetKeywords) {
		if reply, ok, err := m.estimateReply(ctx, sess); err != nil {
			return "", err
		} else if ok {
			return reply, nil
		}
	}

	// Every turn that did not short-circuit on an estimate reply is a capture
	// candidate, budget keywords or not.
	if m.shouldCapture(sess, text) {
		m.captureLead(ctx, sess)
	}

	return m.completionReply(ctx, sess, text)
}

// estimateReply resolves a project type from the full transcript and renders
// the fixed estimate template. ok=false falls the turn through to the
// completion path.
func (m *Manager) estimateReply(ctx context.Context, sess *Session) (string, bool, error) {
	label, ok := m.resolver.Resolve(ctx, sess.Transcript())
	if !ok {
		return "", false, nil
	}

	est, err := m.store.LookupEstimate(label)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up estimate for %q: %w", label, err)
	}

	return fmt.Sprintf(estimateReplyTemplate, est.ProjectType, est.BudgetRange, est.TypicalTimeline), true, nil
}

// shouldCapture implements the extraction trigger: a transcript of at least
// six turns whose latest user turn contains a closing phrase.
func (m *Manager) shouldCapture(sess *Session, text string) bool {
	return sess.Len() >= minTurnsForCapture && containsAny(text, closingPhrases)
}

// captureLead extracts lead info and persists it when both a name and a
// contact were found. The write is fire-and-forget: its outcome never alters
// the reply, so failures are only logged.
func (m *Manager) captureLead(ctx context.Context, sess *Session) {
	info := m.extractor.Extract(ctx, sess.Transcript())
	if !info.Complete() {
		slog.Debug("lead extraction incomplete, skipping", "client_id", sess.ClientID)
		return
	}

	lead := storage.Lead{
		Name:            info.Name,
		Contact:         info.Contact,
		ProjectType:     info.ProjectType,
		ProjectDetails:  info.ProjectDetails,
		FollowUpConsent: info.FollowUpConsent,
	}
	if lead.ProjectType == "" {
		lead.ProjectType = "unknown"
	} else if est, err := m.store.LookupEstimate(lead.ProjectType); err == nil {
		lead.EstimatedBudget = est.BudgetRange
		lead.EstimatedTimeline = est.TypicalTimeline
	}

	id, err := m.store.SaveLead(lead)
	if err != nil {
		slog.Error("storing lead failed", "client_id", sess.ClientID, "error", err)
		return
	}
	slog.Info("lead captured", "client_id", sess.ClientID, "lead_id", id, "project_type", lead.ProjectType)
}

func (m *Manager) completionReply(ctx context.Context, sess *Session, text string) (string, error) {
	// The current user turn is already on the transcript; skip it in the
	// history block so it only appears once, as the prompt's User line.
	prompt := buildPrompt(sess.History(1), text)

	reply, err := m.llm.Chat(ctx, llm.ChatRequest{
		Model:       m.cfg.Model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: m.cfg.Temperature,
		MaxTokens:   m.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion call: %w", err)
	}
	return reply, nil
}

func containsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
