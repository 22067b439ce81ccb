// internal/providers/provider.go

// Package providers defines the interface the chat widget uses to talk to a
// language model host directly, independent of the host implementation.
package providers

import (
	"context"
	"time"

	"github.com/mwiater/dinomuseum/internal/appconfig"
)

// ChatMessage represents a single message in a chat conversation.
// Role is "system", "user" or "assistant".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StreamMetadata contains metadata about a completed chat stream.
type StreamMetadata struct {
	Model         string
	CreatedAt     time.Time
	Done          bool
	TotalDuration int64
	EvalCount     int
}

// StreamRequest encapsulates all the information needed to initiate a chat stream.
type StreamRequest struct {
	Host             appconfig.OllamaHost
	History          []ChatMessage
	SystemPrompt     string
	DisableStreaming bool
}

// StreamCallbacks defines the callback functions that are invoked during a chat stream.
// OnChunk is called for each message chunk received, and OnComplete is called when the stream is finished.
type StreamCallbacks struct {
	OnChunk    func(ChatMessage) error
	OnComplete func(StreamMetadata) error
}

// ChatProvider is the interface that model providers implement.
type ChatProvider interface {
	// Stream sends the conversation to the host and forwards the reply to callbacks.
	Stream(ctx context.Context, req StreamRequest, callbacks StreamCallbacks) error
	// Close cleans up any resources used by the provider.
	Close() error
}
