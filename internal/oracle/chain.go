package oracle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"text/template"
	"time"

	"github.com/ConceptCodes/deep-sql-research/internal/logger"
	"github.com/ConceptCodes/deep-sql-research/internal/model"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// feedbackKey carries correction context between attempts. It is appended to
// the rendered prompt, so stage templates need not reference it.
const feedbackKey = "__feedback"

// Prompt describes one stage's request to the model.
type Prompt struct {
	Stage       string
	System      string
	Template    string // text/template rendered with the call variables
	Funcs       template.FuncMap
	Temperature float32
}

// output is what the parser node hands back. Parse and contract failures are
// carried as values so the retry loop can see the raw response.
type output[T any] struct {
	value T
	raw   string
	err   error
}

// Chain is a compiled prompt -> model -> parser graph for one contract type.
type Chain[T any] struct {
	oracle   *Oracle
	prompt   Prompt
	runnable compose.Runnable[map[string]any, output[T]]
}

// NewChain compiles the generation graph for prompt p.
func NewChain[T any](ctx context.Context, o *Oracle, p Prompt) (*Chain[T], error) {
	tmpl, err := template.New(p.Stage).Funcs(p.Funcs).Parse(p.Template)
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", p.Stage, err)
	}

	render := func(ctx context.Context, vars map[string]any) ([]*schema.Message, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, vars); err != nil {
			return nil, fmt.Errorf("execute template: %w", err)
		}
		if fb, ok := vars[feedbackKey].(string); ok && fb != "" {
			buf.WriteString(fb)
		}
		content := buf.String()
		logger.SetLastPrompt(content)

		msgs := make([]*schema.Message, 0, 2)
		if p.System != "" {
			msgs = append(msgs, schema.SystemMessage(p.System))
		}
		return append(msgs, schema.UserMessage(content)), nil
	}

	generate := func(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
		return o.model.Generate(ctx, msgs, einomodel.WithTemperature(p.Temperature))
	}

	parse := func(ctx context.Context, msg *schema.Message) (output[T], error) {
		var out output[T]
		if msg == nil {
			out.err = ErrNoJSON
			return out, nil
		}
		out.raw = msg.Content

		v, err := ParseJSON[T](msg.Content)
		if err != nil {
			out.err = err
			return out, nil
		}
		if res := checkContract(&v); !res.Valid {
			out.err = fmt.Errorf("%w: %s", ErrContractViolation, res.ErrorSummary())
			return out, nil
		}
		out.value = v
		return out, nil
	}

	graph := compose.NewGraph[map[string]any, output[T]]()
	_ = graph.AddLambdaNode("prompt", compose.InvokableLambda(render))
	_ = graph.AddLambdaNode("model", compose.InvokableLambda(generate))
	_ = graph.AddLambdaNode("parser", compose.InvokableLambda(parse))
	_ = graph.AddEdge(compose.START, "prompt")
	_ = graph.AddEdge("prompt", "model")
	_ = graph.AddEdge("model", "parser")
	_ = graph.AddEdge("parser", compose.END)

	runnable, err := graph.Compile(ctx, compose.WithGraphName(p.Stage))
	if err != nil {
		return nil, fmt.Errorf("compile %s chain: %w", p.Stage, err)
	}

	return &Chain[T]{oracle: o, prompt: p, runnable: runnable}, nil
}

// Generate runs the chain until the model returns output that satisfies T's
// contract, or the attempt budget is spent.
func (c *Chain[T]) Generate(ctx context.Context, vars map[string]any) (T, error) {
	var zero T
	var (
		lastErr error
		lastRaw string
		attempt int
	)
	stage := c.prompt.Stage
	log := c.oracle.logger.With("stage", stage)

	for attempt = 1; attempt <= c.oracle.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		input := make(map[string]any, len(vars)+1)
		maps.Copy(input, vars)
		if lastErr != nil && lastRaw != "" {
			input[feedbackKey] = formatFeedback(lastErr, lastRaw)
		}

		out, elapsed, err := c.invoke(ctx, input)
		if err != nil {
			c.oracle.observer.ObserveOracleCall(stage, OutcomeError, elapsed)
			lastErr, lastRaw = err, ""
			if !isTransientError(err) {
				break
			}
			log.Warn("transient oracle failure, retrying", "attempt", attempt, "error", err)
			if !sleepCtx(ctx, c.oracle.retryDelay) {
				break
			}
			continue
		}

		if out.err != nil {
			c.oracle.observer.ObserveOracleCall(stage, OutcomeInvalid, elapsed)
			lastErr, lastRaw = out.err, out.raw
			log.Debug("oracle output rejected", "attempt", attempt, "error", out.err)
			continue
		}

		c.oracle.observer.ObserveOracleCall(stage, OutcomeOK, elapsed)
		log.Debug("oracle output accepted", "attempt", attempt, "elapsed", elapsed)
		return out.value, nil
	}

	if attempt > c.oracle.maxAttempts {
		attempt = c.oracle.maxAttempts
	}
	return zero, &GenerationError{Stage: stage, Attempts: attempt, RawOutput: lastRaw, Err: lastErr}
}

func (c *Chain[T]) invoke(ctx context.Context, input map[string]any) (output[T], time.Duration, error) {
	callCtx := ctx
	if c.oracle.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.oracle.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := c.runnable.Invoke(callCtx, input)
	elapsed := time.Since(start)

	if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("oracle call timed out after %s: %w", c.oracle.timeout, context.DeadlineExceeded)
	}
	return out, elapsed, err
}

// Generate compiles a one-off chain for p and runs it.
func Generate[T any](ctx context.Context, o *Oracle, p Prompt, vars map[string]any) (T, error) {
	c, err := NewChain[T](ctx, o, p)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.Generate(ctx, vars)
}

func checkContract(v any) model.ValidationResult {
	res := model.ValidateStruct(v)
	if !res.Valid {
		return res
	}
	if custom, ok := v.(model.Validator); ok {
		return custom.Validate()
	}
	return res
}

func formatFeedback(err error, raw string) string {
	return fmt.Sprintf(`

## Correction Required
Your previous response was rejected: %s

Previous response:
%s

Respond again with ONLY valid JSON that satisfies every requirement above.`, err, truncate(raw, maxFeedbackOutput))
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
