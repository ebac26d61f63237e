// README: LLM gateway contract shared by the chat-completions proxy and Gemini providers.
package ai

import "context"

// Gateway sends one system + user instruction pair to a language model and
// returns the raw completion text. Implementations make exactly one round trip
// per call and never retry.
type Gateway interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
