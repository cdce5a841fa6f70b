package openai

import (
	"fmt"
	"strings"
)

const answerSystemPrompt = `You answer questions about a team's message history.
Use only the numbered messages provided. Cite messages by their [number] when you rely on them.
If the messages do not contain the answer, say so plainly instead of guessing.
Prefer the most recent information when messages disagree.`

const plainSystemPrompt = `You are a concise assistant. Follow the instruction exactly and reply with the requested text only.`

// systemPrompt selects the system instructions for a completion.
func systemPrompt(evidence string) string {
	if strings.TrimSpace(evidence) == "" {
		return plainSystemPrompt
	}
	return answerSystemPrompt
}

// userPrompt combines the question with its evidence block.
func userPrompt(prompt, evidence string) string {
	if strings.TrimSpace(evidence) == "" {
		return scrubString(prompt)
	}
	return fmt.Sprintf("Messages:\n\n%s\n\nQuestion: %s", evidence, strings.TrimSpace(prompt))
}
