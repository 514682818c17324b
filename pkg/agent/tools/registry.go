package tools

import (
	"context"
	"fmt"
	"sort"
)

// Registry holds the registered tools. It is populated at startup and
// read-only afterwards, so lookups need no locking.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("cannot register a nil tool")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("cannot register a tool without a name")
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q is already registered", name)
	}
	r.tools[name] = tool
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *Registry) Invoke(ctx context.Context, name string, params Params) (*Result, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return tool.Execute(ctx, params)
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe lists every tool's name, description and parameter schema,
// for diagnostics and capability listings.
func (r *Registry) Describe() []ToolInfo {
	infos := make([]ToolInfo, 0, len(r.tools))
	for _, name := range r.Names() {
		tool := r.tools[name]
		infos = append(infos, ToolInfo{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return infos
}

type ToolInfo struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
}
