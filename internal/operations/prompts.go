package operations

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/pkg/errors"
)

// PromptArgument is a hint a prompt accepts
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// Prompt is a conversation starter. Render is pure templating and never
// calls upstream.
type Prompt struct {
	Name        string
	Description string
	Arguments   []PromptArgument
	Render      func(args map[string]string) string
}

// PromptInfo describes a prompt to clients
type PromptInfo struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`
}

// RegisterPrompt adds a prompt template
func (r *Registry) RegisterPrompt(p Prompt) error {
	if p.Name == "" || p.Render == nil {
		return fmt.Errorf("prompt name and renderer are required")
	}
	if _, exists := r.prompts[p.Name]; exists {
		return fmt.Errorf("prompt %q already registered", p.Name)
	}
	r.prompts[p.Name] = &p
	return nil
}

// Prompts lists registered prompts sorted by name
func (r *Registry) Prompts() []PromptInfo {
	infos := make([]PromptInfo, 0, len(r.prompts))
	for _, p := range r.prompts {
		args := p.Arguments
		if args == nil {
			args = []PromptArgument{}
		}
		infos = append(infos, PromptInfo{Name: p.Name, Description: p.Description, Arguments: args})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// GetPrompt renders a prompt into a single user message
func (r *Registry) GetPrompt(ctx context.Context, name string, args map[string]string) Result {
	start := time.Now()
	action := "rendering prompt " + name

	p, ok := r.prompts[name]
	if !ok {
		res := failureResult(name, action, &errors.ErrNotFound{Resource: "prompt", ID: name})
		r.finish(ctx, unknownPrompt, domain.OperationPrompt, res, start)
		return res
	}

	for _, arg := range p.Arguments {
		if arg.Required && strings.TrimSpace(args[arg.Name]) == "" {
			res := failureResult(name, action, errors.NewValidation(arg.Name, "is required"))
			r.finish(ctx, name, domain.OperationPrompt, res, start)
			return res
		}
	}

	res := Result{
		Operation: name,
		Content:   []Content{{Type: "text", Role: "user", Text: p.Render(args)}},
	}
	r.finish(ctx, name, domain.OperationPrompt, res, start)
	return res
}
