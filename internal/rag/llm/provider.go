package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider generates a grounded answer. A provider error is surfaced to the
// caller as a failed answer - unlike retrieval, generation failures are never
// downgraded to an empty result.
type Provider interface {
	Generate(ctx context.Context, query string, contexts []string, messageHistory []string) (string, error)
}

const promptTemplate = `Context:
%s

Question: %s

Please provide a comprehensive answer based on the context provided. If the context doesn't contain enough information to answer the question completely, please say so and provide what information you can based on the available context.`

// BuildPrompt assembles the grounded prompt: retrieved chunk contents joined
// by blank lines in retrieval order, then the user question. An empty context
// set produces an empty context block - the instruction to admit insufficient
// information still applies, so the model answers honestly instead of
// fabricating.
func BuildPrompt(query string, contexts []string, messageHistory []string) string {
	contextBlock := strings.Join(contexts, "\n\n")

	prompt := fmt.Sprintf(promptTemplate, contextBlock, query)

	if len(messageHistory) > 0 {
		history := "Previous conversation (question and answer pairs, oldest first):\n" +
			strings.Join(messageHistory, "\n")
		prompt = history + "\n\n" + prompt
	}
	return prompt
}
