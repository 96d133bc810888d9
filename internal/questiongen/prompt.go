package questiongen

import (
	"fmt"
	"strings"
)

// maxContentRunes keeps prompts inside every supported model's context.
const maxContentRunes = 80000

const systemPrompt = `You write multiple-choice quiz questions for students revising their own study notes.
Rules:
- Every question must be answerable from the supplied material alone.
- Give exactly four options. Options must be distinct and plausible.
- The answer must be copied character for character from the options.
- Spread difficulty across 1 (recall) to 5 (synthesis).
- Keep explanations short and factual.`

func buildPrompt(content string, n int) string {
	if r := []rune(content); len(r) > maxContentRunes {
		content = string(r[:maxContentRunes])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d questions with varying difficulty from the study material below.\n\n", n)
	b.WriteString("Study material:\n")
	b.WriteString(content)
	return b.String()
}
