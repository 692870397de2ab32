package assistant

import (
	"regexp"
	"strings"
)

// Models occasionally leak chain-of-thought markers despite the prompt
// forbidding them. Strip the common ones before the answer reaches a user.
var cotPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^thoughts?:.*?(\n|$)`),
	regexp.MustCompile(`(?i)^reasoning:.*?(\n|$)`),
	regexp.MustCompile(`(?i)^analysis:.*?(\n|$)`),
	regexp.MustCompile(`(?is)` + "```" + `(?:thought|chain[- ]?of[- ]?thought|analysis)[\s\S]*?` + "```"),
}

func sanitizeAnswer(text string) string {
	cleaned := text

	for _, pattern := range cotPatterns {
		cleaned = strings.TrimSpace(pattern.ReplaceAllString(cleaned, ""))
	}

	return cleaned
}
