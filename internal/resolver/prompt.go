package resolver

import (
	"fmt"
	"strings"

	"github.com/mkraev/presalesd/internal/llm"
)

const classifyTemplate = `You are a project type classifier for a software development company.

Given a user's description of their project, classify it into one of the following project types:
%s

If the user's description doesn't match any of these project types, respond with "unknown".

User's project description: "%s"

Project type (respond with only the project type, no other text):`

// classifyPrompt builds the single-message classification prompt listing the
// candidate labels.
func classifyPrompt(types []string, text string) []llm.Message {
	return []llm.Message{
		{
			Role:    "user",
			Content: fmt.Sprintf(classifyTemplate, strings.Join(types, ", "), text),
		},
	}
}
