package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ConceptCodes/deep-sql-research/internal/database"
	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
)

// DefaultMaxQueryAttempts bounds query generation per task.
const DefaultMaxQueryAttempts = 4

// Querier runs read-only SQL. *database.DB satisfies it.
type Querier interface {
	Execute(ctx context.Context, query string, params []any) ([]model.Row, error)
	Dialect() database.Dialect
}

type queryOutput struct {
	Query  string `json:"query" validate:"required,nonempty"`
	Params []any  `json:"params"`
}

// SearchOptions tunes a Searcher.
type SearchOptions struct {
	MaxAttempts       int
	AnalyzeResults    bool
	RequeryIrrelevant bool
	Logger            *slog.Logger
}

// Searcher runs the per-task query loop: generate a query, execute it and
// optionally analyze the results, regenerating on failure.
type Searcher struct {
	db       Querier
	query    *oracle.Chain[queryOutput]
	analysis *oracle.Chain[model.Analysis]
	opts     SearchOptions
	logger   *slog.Logger
}

// NewSearcher compiles the query and analysis chains.
func NewSearcher(ctx context.Context, o *oracle.Oracle, db Querier, opts SearchOptions) (*Searcher, error) {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxQueryAttempts
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	query, err := oracle.NewChain[queryOutput](ctx, o, oracle.Prompt{
		Stage:       "query",
		System:      querySystem,
		Template:    queryPromptTemplate,
		Temperature: queryTemperature,
	})
	if err != nil {
		return nil, err
	}
	analysis, err := oracle.NewChain[model.Analysis](ctx, o, oracle.Prompt{
		Stage:       "analysis",
		System:      querySystem,
		Template:    analysisPromptTemplate,
		Temperature: analysisTemperature,
	})
	if err != nil {
		return nil, err
	}

	return &Searcher{db: db, query: query, analysis: analysis, opts: opts, logger: logger}, nil
}

// SearchResult is the outcome of one search branch. Attempt holds the last
// successful execution, or the last failure when every attempt failed.
type SearchResult struct {
	Task          model.Task
	Attempt       model.QueryAttempt
	Attempts      int
	FailedQueries []string
}

// Succeeded reports whether a query executed without error.
func (r SearchResult) Succeeded() bool { return r.Attempt.Error == "" }

type searchState int

const (
	stateGenerate searchState = iota
	stateExecute
	stateAnalyze
	stateDone
)

// Search answers one task. Query failures are fed back into regeneration and
// never surface as errors; an error is returned only when the query oracle
// itself fails or ctx is done.
func (s *Searcher) Search(ctx context.Context, task model.Task, schema string) (SearchResult, error) {
	log := s.logger.With("task", truncateText(task.Description, 60))
	res := SearchResult{Task: task}

	var (
		current    model.QueryAttempt
		success    *model.QueryAttempt
		lastErr    string
		refinement string
		failed     = map[string]bool{}
	)

	state := stateGenerate
	for state != stateDone {
		switch state {
		case stateGenerate:
			if res.Attempts >= s.opts.MaxAttempts {
				state = stateDone
				continue
			}
			out, err := s.query.Generate(ctx, map[string]any{
				"Dialect":       dialectName(s.db.Dialect()),
				"Placeholder":   placeholder(s.db.Dialect()),
				"Task":          task.Description,
				"SuccessCase":   task.SuccessCase,
				"Schema":        schema,
				"LastError":     lastErr,
				"FailedQueries": res.FailedQueries,
				"Refinement":    refinement,
			})
			if err != nil {
				return res, fmt.Errorf("generate query: %w", err)
			}
			res.Attempts++
			current = model.QueryAttempt{Query: out.Query, Params: out.Params}

			if failed[normalizeQuery(out.Query)] {
				lastErr = "the query repeats one that already failed; write a different query"
				current.Error = lastErr
				log.Debug("rejected repeated query", "attempt", res.Attempts)
				continue
			}
			state = stateExecute

		case stateExecute:
			rows, err := s.db.Execute(ctx, current.Query, current.Params)
			if err != nil {
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				lastErr = err.Error()
				current.Error = lastErr
				failed[normalizeQuery(current.Query)] = true
				res.FailedQueries = append(res.FailedQueries, current.Query)
				log.Debug("query failed", "attempt", res.Attempts, "error", err)
				state = stateGenerate
				continue
			}
			current.Results = rows
			current.Error = ""
			kept := current
			success = &kept
			if s.opts.AnalyzeResults {
				state = stateAnalyze
			} else {
				state = stateDone
			}

		case stateAnalyze:
			a, err := s.analysis.Generate(ctx, map[string]any{
				"Task":    task.Description,
				"Query":   current.Query,
				"Summary": SummarizeRows(current.Results, analysisSampleRows),
			})
			if err != nil {
				log.Warn("result analysis failed", "error", err)
				state = stateDone
				continue
			}
			success.Analysis = &a
			state = stateDone

			if s.opts.RequeryIrrelevant && !a.IsRelevant && res.Attempts < s.opts.MaxAttempts {
				refinement = a.SuggestedRefinement
				lastErr = "the previous query ran but its results did not address the task"
				failed[normalizeQuery(current.Query)] = true
				res.FailedQueries = append(res.FailedQueries, current.Query)
				log.Debug("results judged irrelevant, requerying", "attempt", res.Attempts)
				state = stateGenerate
			}
		}
	}

	if success != nil {
		res.Attempt = *success
	} else {
		res.Attempt = current
		if res.Attempt.Error == "" {
			res.Attempt.Error = lastErr
		}
	}
	return res, nil
}

// normalizeQuery collapses whitespace and a trailing semicolon so trivially
// reformatted queries compare equal.
func normalizeQuery(q string) string {
	q = strings.TrimSpace(q)
	q = strings.TrimSuffix(q, ";")
	return strings.Join(strings.Fields(q), " ")
}

func dialectName(d database.Dialect) string {
	if d == database.Postgres {
		return "PostgreSQL"
	}
	return "SQLite"
}

func placeholder(d database.Dialect) string {
	if d == database.Postgres {
		return "$1, $2, ..."
	}
	return "?"
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
