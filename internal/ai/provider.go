package ai

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a chat-completion backend. Given an ordered role-tagged
// history (system directive first), it returns the assistant text.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
