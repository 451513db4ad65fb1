package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Registry holds the tools the agent may call and dispatches calls to them.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a registry holding the given tools.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name is required")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get looks a tool up by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Execute runs the named tool. It never fails: an unknown tool, a returned
// error or a panic all become an {error} result.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (result Result) {
	tool, ok := r.Get(name)
	if !ok {
		return Error("Unknown tool: " + name)
	}

	defer func() {
		if p := recover(); p != nil {
			result = Error(fmt.Sprint(p))
		}
	}()

	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}

	res, err := tool.Execute(ctx, args)
	if err != nil {
		return Error(err.Error())
	}
	if res == nil {
		return Result{}
	}
	return res
}
