package assistant

import (
	"fmt"
	"strings"

	"studymate/app/service/history"
	"studymate/app/service/memory"

	_ "embed"
)

//go:embed prompt_template.txt
var promptTemplate string

// composePrompt builds the full prompt from its parts in fixed order:
// style instructions, retrieved notes, conversation history, user message.
// It is a pure function of its inputs. The single-pass replacer leaves
// placeholder-like text inside user messages and notes untouched.
func composePrompt(message string, turns []history.Turn, snippets []memory.Snippet, style Style) string {
	return strings.NewReplacer(
		"{style}", string(style),
		"{notes}", formatSnippets(snippets),
		"{chat_history}", formatTurns(turns),
		"{message}", message,
	).Replace(promptTemplate)
}

func formatSnippets(snippets []memory.Snippet) string {
	if len(snippets) == 0 {
		return "No notes found"
	}

	var builder strings.Builder

	for i, snippet := range snippets {
		if i > 0 {
			builder.WriteString("\n\n")
		}

		builder.WriteString(fmt.Sprintf("[Note %d]", i+1))
		if snippet.Source != "" {
			builder.WriteString(" source=" + snippet.Source)
		}
		builder.WriteString("\n")
		builder.WriteString(snippet.Text)
	}

	return builder.String()
}

func formatTurns(turns []history.Turn) string {
	if len(turns) == 0 {
		return "No previous messages"
	}

	var builder strings.Builder

	for _, turn := range turns {
		builder.WriteString(fmt.Sprintf("%s: %s\n", turn.Role, turn.Text))
	}

	return builder.String()
}
