// Package extract pulls structured lead information out of an accumulated
// conversation transcript using pattern matching. Aside from the project-type
// fallback to the resolver, extraction is deterministic: the same transcript
// always yields the same result.
package extract

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxDetailsLen caps how much trailing text after the project type mention is
// kept as project details.
const maxDetailsLen = 500

// ProjectTypeResolver classifies free text into a canonical project type.
type ProjectTypeResolver interface {
	Resolve(ctx context.Context, text string) (string, bool)
}

// Info is the extraction result. Zero values mean "not found".
type Info struct {
	Name            string
	Contact         string
	ProjectType     string
	ProjectDetails  string
	FollowUpConsent bool
}

// Complete reports whether the info qualifies for persistence: both a name
// and a contact were found.
func (i Info) Complete() bool {
	return i.Name != "" && i.Contact != ""
}

// Name patterns are tried in order; the first match anywhere in the text wins.
// Only letters and spaces are captured, so a capture never crosses a line.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)my name is ([A-Za-z ]+)`),
	regexp.MustCompile(`(?i)I'm ([A-Za-z ]+)`),
	regexp.MustCompile(`(?i)I am ([A-Za-z ]+)`),
	regexp.MustCompile(`(?i)([A-Za-z ]+) here`),
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+\d{1,3}[\s-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
)

// projectTypeVocabulary is scanned for a literal hit before falling back to
// the resolver. Entries beyond the estimate table are deliberate: the lead
// record may carry a finer-grained type than the reference table knows.
var projectTypeVocabulary = []string{
	"e-commerce website", "mobile app", "web application",
	"desktop application", "API integration", "CRM system",
	"content management system", "database design", "data migration",
	"AI/ML solution", "chatbot", "automation tool",
}

var consentPhrases = []string{
	"yes, you can follow up", "follow up", "contact me", "reach out",
}

// Extractor extracts lead information from transcripts.
type Extractor struct {
	resolver ProjectTypeResolver
}

// New creates an Extractor. The resolver may be nil, in which case project
// type detection relies on the vocabulary scan alone.
func New(resolver ProjectTypeResolver) *Extractor {
	return &Extractor{resolver: resolver}
}

// Extract analyses the transcript text and returns whatever lead fields it
// can find. Missing fields are not errors.
func (e *Extractor) Extract(ctx context.Context, transcript string) Info {
	info := Info{
		Name:            extractName(transcript),
		Contact:         extractContact(transcript),
		FollowUpConsent: hasConsent(transcript),
	}

	info.ProjectType = e.extractProjectType(ctx, transcript)
	if info.ProjectType != "" {
		info.ProjectDetails = extractDetails(transcript, info.ProjectType)
	}

	return info
}

func extractName(text string) string {
	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// extractContact prefers an email over a phone number when both appear.
func extractContact(text string) string {
	if m := emailPattern.FindString(text); m != "" {
		return m
	}
	return phonePattern.FindString(text)
}

func (e *Extractor) extractProjectType(ctx context.Context, text string) string {
	lower := strings.ToLower(text)
	for _, pt := range projectTypeVocabulary {
		if strings.Contains(lower, strings.ToLower(pt)) {
			return pt
		}
	}

	if e.resolver != nil {
		if label, ok := e.resolver.Resolve(ctx, text); ok {
			return label
		}
	}
	return ""
}

// extractDetails returns up to maxDetailsLen characters following the first
// mention of the project type. A mention at offset zero is not a usable
// anchor: there is no surrounding sentence to attribute the details to.
func extractDetails(text, projectType string) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(projectType))
	if idx <= 0 {
		return ""
	}
	details := text[idx+len(projectType):]
	if utf8.RuneCountInString(details) > maxDetailsLen {
		runes := []rune(details)
		details = string(runes[:maxDetailsLen])
	}
	return strings.TrimSpace(details)
}

func hasConsent(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range consentPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
