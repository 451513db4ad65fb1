// Package llm defines the chat-model boundary used by the agent loop and the
// summarizer: a Provider sends a transcript to a chat endpoint and returns
// the decoded Completion.
//
// Example usage:
//
//	provider := ollama.NewProvider(
//	    ollama.WithEndpoint("http://localhost:3000/api/chat"),
//	    ollama.WithModel("gpt-oss:20b"),
//	)
//
//	completion, err := provider.Complete(ctx, llm.Request{
//	    Turns: []types.Turn{types.NewUserTurn("Hello!")},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(completion.Content)
package llm

import (
	"context"

	"github.com/entrhq/pagepilot/pkg/types"
)

// Request is one chat call.
type Request struct {
	// Turns is the transcript sent as the messages array.
	Turns []types.Turn

	// Temperature is always sent; the agent uses 0.
	Temperature float64
}

// Provider sends chat requests to a model endpoint.
//
// Complete returns a *TransportError when the endpoint cannot be reached,
// answers with a non-2xx status or returns a body that is not JSON. Any JSON
// body decodes into a Completion; interpreting it is the caller's job.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Completion, error)

	// GetModel returns the model name sent with each request.
	GetModel() string

	// GetEndpoint returns the chat endpoint URL.
	GetEndpoint() string
}
