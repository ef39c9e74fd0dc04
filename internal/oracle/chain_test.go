package oracle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle/oracletest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	Grade  string `json:"grade" validate:"required,oneof=pass fail"`
	Reason string `json:"reason"`
}

type scored struct {
	Score int `json:"score"`
}

func (s *scored) Validate() model.ValidationResult {
	if s.Score%2 != 0 {
		return model.ValidationResult{Errors: []model.ValidationError{{Field: "Score", Message: "Score must be even"}}}
	}
	return model.ValidationResult{Valid: true}
}

type countingObserver struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingObserver) ObserveOracleCall(_, outcome string, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[string]int{}
	}
	c.outcomes[outcome]++
}

var reviewPrompt = Prompt{
	Stage:       "review",
	System:      "You grade plans.",
	Template:    "REVIEW the plan for {{.Goal}}.",
	Temperature: 0.1,
}

func TestChain_Generate_FirstAttempt(t *testing.T) {
	fake := oracletest.New().On("REVIEW", `{"grade":"pass","reason":"fine"}`)
	o := New(fake, WithRetryDelay(0))

	got, err := Generate[verdict](context.Background(), o, reviewPrompt, map[string]any{"Goal": "sales"})
	require.NoError(t, err)
	assert.Equal(t, verdict{Grade: "pass", Reason: "fine"}, got)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "REVIEW the plan for sales.", calls[0].Prompt)
	assert.Equal(t, "You grade plans.", calls[0].System)
	assert.InDelta(t, 0.1, calls[0].Temperature, 1e-6)
}

func TestChain_Generate_FeedsBackValidationErrors(t *testing.T) {
	fake := oracletest.New().On("REVIEW", `{"grade":"maybe"}`, `{"grade":"fail","reason":"joins"}`)
	obs := &countingObserver{}
	o := New(fake, WithRetryDelay(0), WithObserver(obs))

	got, err := Generate[verdict](context.Background(), o, reviewPrompt, map[string]any{"Goal": "sales"})
	require.NoError(t, err)
	assert.Equal(t, "fail", got.Grade)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.NotContains(t, calls[0].Prompt, "Correction Required")
	assert.Contains(t, calls[1].Prompt, "Correction Required")
	assert.Contains(t, calls[1].Prompt, "verdict.Grade must be one of: pass fail")
	assert.Contains(t, calls[1].Prompt, `{"grade":"maybe"}`)
	assert.Equal(t, 1, obs.outcomes[OutcomeInvalid])
	assert.Equal(t, 1, obs.outcomes[OutcomeOK])
}

func TestChain_Generate_ExhaustsAttempts(t *testing.T) {
	fake := oracletest.New().On("REVIEW", "not json at all")
	o := New(fake, WithRetryDelay(0), WithMaxAttempts(2))

	_, err := Generate[verdict](context.Background(), o, reviewPrompt, nil)
	require.Error(t, err)

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "review", genErr.Stage)
	assert.Equal(t, 2, genErr.Attempts)
	assert.True(t, errors.Is(err, ErrNoJSON))
	assert.Len(t, fake.Calls(), 2)
}

func TestChain_Generate_CustomValidator(t *testing.T) {
	fake := oracletest.New().On("SCORE", `{"score":3}`, `{"score":4}`)
	o := New(fake, WithRetryDelay(0))

	got, err := Generate[scored](context.Background(), o, Prompt{Stage: "score", Template: "SCORE it"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Score)
	assert.Contains(t, fake.Calls()[1].Prompt, "Score must be even")
}

func TestChain_Generate_ModelErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{"permanent error fails fast", errors.New("invalid api key"), 1},
		{"transient error retries", errors.New("429 too many requests"), DefaultMaxAttempts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := oracletest.New().OnError("REVIEW", tt.err)
			o := New(fake, WithRetryDelay(0))

			_, err := Generate[verdict](context.Background(), o, reviewPrompt, nil)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.err.Error()))
			assert.Len(t, fake.Calls(), tt.wantCalls)
		})
	}
}

func TestChain_Generate_CanceledContext(t *testing.T) {
	fake := oracletest.New().On("REVIEW", `{"grade":"pass"}`)
	o := New(fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Generate[verdict](ctx, o, reviewPrompt, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, fake.Calls())
}

func TestNewChain_BadTemplate(t *testing.T) {
	_, err := NewChain[verdict](context.Background(), New(oracletest.New()), Prompt{Stage: "bad", Template: "{{.Goal"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse bad template")
}
