package chatbot

import (
	"fmt"
	"strings"
)

// buildPrompt fills the generation template. An empty detail drops the
// clause following the institution name.
func buildPrompt(institution, detail, question, contextText string) string {
	var b strings.Builder
	b.WriteString("You are an assistant for ")
	b.WriteString(institution)
	if detail != "" {
		b.WriteString(", ")
		b.WriteString(detail)
	}
	fmt.Fprintf(&b, ". Answer the following question based on the provided context and ensure the response is relevant to %s:\n\n", institution)
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	fmt.Fprintf(&b, "Context: %s\n\n", contextText)
	b.WriteString("Answer:")
	return b.String()
}
