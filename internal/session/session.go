// Package session holds per-client conversation state and orchestrates each
// turn: estimate lookups, lead capture, and the completion call.
package session

import (
	"strings"
	"sync/atomic"
	"time"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one transcript entry.
type Turn struct {
	Role string
	Text string
}

// Session is the conversation state for one client. The transport delivers at
// most one in-flight message per connection, so the transcript is only ever
// mutated by that client's turn handler and carries no lock. lastActive is
// read concurrently by the eviction sweeper and is therefore atomic.
type Session struct {
	ClientID   string
	transcript []Turn
	lastActive atomic.Int64 // unix nanos
}

func newSession(clientID string) *Session {
	s := &Session{ClientID: clientID}
	s.touch()
	return s
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns the time of the most recent turn.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Append records a turn and refreshes the activity timestamp.
func (s *Session) Append(role, text string) {
	s.transcript = append(s.transcript, Turn{Role: role, Text: text})
	s.touch()
}

// Len returns the number of accumulated turns.
func (s *Session) Len() int {
	return len(s.transcript)
}

// Transcript returns all turn texts joined by newlines, the form the
// extractor and resolver operate on.
func (s *Session) Transcript() string {
	parts := make([]string, len(s.transcript))
	for i, t := range s.transcript {
		parts[i] = t.Text
	}
	return strings.Join(parts, "\n")
}

// History formats the transcript as alternating "User:"/"AI:" lines for the
// completion prompt. skipLast drops that many trailing turns: the current
// user turn is rendered separately by the prompt template and must not appear
// twice.
func (s *Session) History(skipLast int) string {
	end := len(s.transcript) - skipLast
	if end <= 0 {
		return ""
	}
	var sb strings.Builder
	for i, t := range s.transcript[:end] {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch t.Role {
		case RoleUser:
			sb.WriteString("User: ")
		case RoleAssistant:
			sb.WriteString("AI: ")
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}
