package prompt

import (
	"fmt"
	"strings"

	"github.com/iammorganparry/companion/internal/models"
)

// LegacyContextCount is how many retrieved results the legacy context keeps.
const LegacyContextCount = 5

// BuildConversationContext is the pre-layered prompt context: the first
// LegacyContextCount results, oldest first, followed by the current message.
func BuildConversationContext(results []models.SemanticResult, current string) string {
	if len(results) == 0 {
		return fmt.Sprintf("This is the start of a new conversation. Current message: \"%s\"", current)
	}

	n := min(len(results), LegacyContextCount)
	lines := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		lines = append(lines, fmt.Sprintf("Previous: \"%s\"", results[i].Text))
	}
	return fmt.Sprintf("Recent conversation context:\n%s\n\nCurrent message: \"%s\"", strings.Join(lines, "\n"), current)
}
