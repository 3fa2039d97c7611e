// Package llmtest provides a scripted llm.Generator for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"

	"github.com/raphaelgruber/braindump/internal/llm"
)

// Call records a single GenerateTimed invocation.
type Call struct {
	Label  string
	Prompt string
}

type rule struct {
	label   string
	substr  string
	replies []string
	next    int
}

func (r *rule) matches(label, prompt string) bool {
	if r.label != "" && r.label != label {
		return false
	}
	if r.substr != "" && !strings.Contains(prompt, r.substr) {
		return false
	}
	return true
}

// reply returns the next scripted reply; the last one repeats.
func (r *rule) reply() string {
	if len(r.replies) == 0 {
		return ""
	}
	i := r.next
	if i >= len(r.replies) {
		i = len(r.replies) - 1
	}
	r.next++
	return r.replies[i]
}

// Generator routes prompts to scripted replies by label and prompt substring.
// Rules are tried in registration order; unmatched prompts get the default reply.
type Generator struct {
	mu       sync.Mutex
	rules    []*rule
	fallback rule
	calls    []Call
}

var _ llm.Generator = (*Generator)(nil)

// New creates an empty scripted generator whose default reply is ErrorText.
func New() *Generator {
	return &Generator{fallback: rule{replies: []string{llm.ErrorText}}}
}

// OnLabel scripts replies for calls made under label.
func (g *Generator) OnLabel(label string, replies ...string) *Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, &rule{label: label, replies: replies})
	return g
}

// OnPrompt scripts replies for calls whose prompt contains substr.
func (g *Generator) OnPrompt(substr string, replies ...string) *Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, &rule{substr: substr, replies: replies})
	return g
}

// On scripts replies for calls under label whose prompt contains substr.
func (g *Generator) On(label, substr string, replies ...string) *Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, &rule{label: label, substr: substr, replies: replies})
	return g
}

// Default sets the replies used when no rule matches.
func (g *Generator) Default(replies ...string) *Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fallback = rule{replies: replies}
	return g
}

// GenerateTimed implements llm.Generator.
func (g *Generator) GenerateTimed(_ context.Context, label, prompt string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, Call{Label: label, Prompt: prompt})
	for _, r := range g.rules {
		if r.matches(label, prompt) {
			return r.reply()
		}
	}
	return g.fallback.reply()
}

// Calls returns every recorded call in order.
func (g *Generator) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

// CallsFor returns the recorded calls made under label.
func (g *Generator) CallsFor(label string) []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []Call
	for _, c := range g.calls {
		if c.Label == label {
			out = append(out, c)
		}
	}
	return out
}
