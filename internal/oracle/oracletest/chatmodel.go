// Package oracletest provides a scripted chat model for exercising code that
// talks to the oracle without a live provider.
package oracletest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Call records one Generate invocation.
type Call struct {
	Prompt      string
	System      string
	Temperature float32
}

type route struct {
	marker    string
	responses []string
	err       error
	served    int
}

// ChatModel answers prompts with canned responses. A prompt is matched
// against routes in registration order by substring; each route replays its
// responses in order and then repeats the last one.
type ChatModel struct {
	mu     sync.Mutex
	routes []*route
	calls  []Call
}

var _ model.BaseChatModel = (*ChatModel)(nil)

// New returns an empty scripted model.
func New() *ChatModel {
	return &ChatModel{}
}

// On answers prompts containing marker with responses.
func (m *ChatModel) On(marker string, responses ...string) *ChatModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, &route{marker: marker, responses: responses})
	return m
}

// OnError fails prompts containing marker with err.
func (m *ChatModel) OnError(marker string, err error) *ChatModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.routes = append(m.routes, &route{marker: marker, err: err})
	return m
}

// Generate implements model.BaseChatModel.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	call := Call{}
	for _, msg := range input {
		switch msg.Role {
		case schema.System:
			call.System = msg.Content
		case schema.User:
			call.Prompt = msg.Content
		}
	}
	if o := model.GetCommonOptions(&model.Options{}, opts...); o.Temperature != nil {
		call.Temperature = *o.Temperature
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)

	for _, r := range m.routes {
		if !strings.Contains(call.Prompt, r.marker) {
			continue
		}
		if r.err != nil {
			return nil, r.err
		}
		if len(r.responses) == 0 {
			return nil, fmt.Errorf("oracletest: route %q has no responses", r.marker)
		}
		i := min(r.served, len(r.responses)-1)
		r.served++
		return schema.AssistantMessage(r.responses[i], nil), nil
	}
	return nil, fmt.Errorf("oracletest: no route for prompt %q", truncate(call.Prompt, 120))
}

// Stream implements model.BaseChatModel by emitting the Generate result as a
// single chunk.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// Calls returns a copy of every recorded call.
func (m *ChatModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsMatching returns recorded calls whose prompt contains marker.
func (m *ChatModel) CallsMatching(marker string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if strings.Contains(c.Prompt, marker) {
			out = append(out, c)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
