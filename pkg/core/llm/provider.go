// Package llm holds the text-generation providers used as the column
// mapping oracle. Providers are opaque: they take prompts and return raw
// text that may or may not be well-formed JSON.
package llm

import "context"

// Provider is the interface every oracle backend implements.
type Provider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
