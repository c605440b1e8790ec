package ollama

import "fmt"

// Two prompt variants, selected strictly by whether retrieval produced a
// non-empty context string. An empty context must never be rendered into
// the context-bearing variant.

const chatPromptTemplate = `You are a helpful and friendly AI assistant. Answer clearly and concisely.

User: %s

Assistant:`

const contextPromptTemplate = `You are a helpful and friendly AI assistant. Use the provided context to answer the question accurately.

Context:
%s

Question: %s

Answer:`

// availabilityProbe is the fixed benign prompt used by the health check.
const availabilityProbe = "Test"

func buildPrompt(question, contextText string) string {
	if contextText != "" {
		return fmt.Sprintf(contextPromptTemplate, contextText, question)
	}
	return fmt.Sprintf(chatPromptTemplate, question)
}
