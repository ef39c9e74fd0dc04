package research

// Oracle temperatures per stage.
const (
	planTemperature        = 0
	reviewTemperature      = 0
	queryTemperature       = 0
	analysisTemperature    = 0
	synthesisTemperature   = 0.3
	sufficiencyTemperature = 0.1
)

const plannerSystem = `You are the research planner for a data analysis team. You turn a user's analytical goal into small, schema-aware research tasks that can each be answered with a single read-only SQL query.`

const planPromptTemplate = `You are the research planner. Build a research plan for the goal below.

GOAL:
{{.Goal}}

DATABASE SCHEMA (the only data available):
{{.Schema}}
{{if .PriorTitles}}
INSIGHTS ALREADY GATHERED:
{{range .PriorTitles}}- {{.}}
{{end}}
Do NOT create tasks that duplicate these findings.
{{end}}{{if .Feedback}}
FEEDBACK FROM THE PREVIOUS ROUND:
{{.Feedback}}

Earlier tasks came back empty, failed or were rejected. SIMPLIFY:
- Avoid JOINs that may be failing.
- Probe single tables first (e.g. SELECT * FROM some_table LIMIT 5) to confirm contents and join keys.
- Split complex questions into smaller, simpler queries.
{{end}}
INSTRUCTIONS:
Output JSON with this schema:
{
  "tasks": [
    {
      "description": "string (what to find out, naming the relevant tables and columns)",
      "successCase": "string (what a useful result looks like)"
    }
  ]
}

RULES:
- Every task must be answerable from the schema above
- Prefer 2-4 focused tasks over many broad ones
- Return an empty task list if nothing in the schema can serve the goal
- Output ONLY valid JSON`

const reviewPromptTemplate = `You are the plan reviewer. Judge whether the research plan below is complete, logical and executable.

PLAN:
{{range .Tasks}}- {{.}}
{{else}}(no tasks)
{{end}}
INSTRUCTIONS:
Output JSON with this schema:
{
  "grade": "pass|fail",
  "feedback": "string (required when grade is fail: what to fix)"
}

RULES:
- Fail plans with ambiguous, duplicated or non-actionable tasks
- Pass plans whose tasks are each clearly answerable with one query
- Output ONLY valid JSON`

const querySystem = `You are a SQL query writer. You write one syntactically correct, read-only query per request, using only tables and columns present in the provided schema.`

const queryPromptTemplate = `You are the SQL query writer. Write a single {{.Dialect}} query for the task below.

TASK:
{{.Task}}

SUCCESS LOOKS LIKE:
{{.SuccessCase}}

DATABASE SCHEMA:
{{.Schema}}
{{if .LastError}}
PREVIOUS ERROR (fix the cause before answering):
{{.LastError}}
{{end}}{{if .FailedQueries}}
QUERIES THAT ALREADY FAILED (do not repeat any of them):
{{range .FailedQueries}}- {{.}}
{{end}}{{end}}{{if .Refinement}}
REFINEMENT REQUESTED BY ANALYSIS:
{{.Refinement}}
{{end}}
INSTRUCTIONS:
Output JSON with this schema:
{
  "query": "string (one SELECT statement)",
  "params": ["optional positional parameters, in order"]
}

RULES:
- Read-only: SELECT or WITH statements only
- Use {{.Placeholder}} placeholders for params; omit params when the query has none
- Aggregate or LIMIT large results
- Output ONLY valid JSON`

const analysisPromptTemplate = `You are the results analyst. Assess whether the query results below answer the task.

TASK:
{{.Task}}

QUERY EXECUTED:
{{.Query}}

DATA SUMMARY:
{{.Summary}}

INSTRUCTIONS:
Output JSON with this schema:
{
  "isRelevant": boolean,
  "dataQuality": "high|medium|low|empty",
  "keyPatterns": ["1-3 patterns or anomalies visible in the data"],
  "suggestedRefinement": "string (only when the data is irrelevant or unexpectedly empty)"
}

RULES:
- isRelevant is false when the data does not address the task
- Output ONLY valid JSON`

const synthesisPromptTemplate = `You are the insight synthesizer. Turn the query results below into insights for a data-driven video presentation.

GOAL:
{{.Goal}}

CURRENT TASK:
{{.Task}}

QUERY:
{{.Query}}

RESULTS SUMMARY:
{{.Summary}}
{{with .Analysis}}
ANALYSIS OF RESULTS:
- Relevant: {{.IsRelevant}}
- Quality: {{.DataQuality}}
- Patterns: {{if .KeyPatterns}}{{range $i, $p := .KeyPatterns}}{{if $i}}, {{end}}{{$p}}{{end}}{{else}}None{{end}}
{{end}}{{if .ExistingTitles}}
EXISTING INSIGHTS (do not restate):
{{range .ExistingTitles}}- {{.}}
{{end}}{{end}}
INSTRUCTIONS:
Output JSON with this schema:
{
  "insights": [
    {
      "type": "statistic|trend|comparison|ranking|distribution",
      "title": "string (clear, descriptive)",
      "summary": "string (what the data means, in plain words)",
      "data": "any JSON (the values that support the insight)",
      "confidence": 0.0-1.0,
      "metadata": {"optional": "units, context, limitations"}
    }
  ]
}

TYPES:
- statistic: a single key metric or fact
- trend: change over time
- comparison: different categories or groups side by side
- ranking: ordered list from highest to lowest
- distribution: how values spread across categories

RULES:
- Return 1-3 of the most important insights
- If rows were truncated, rely on visible patterns and aggregates
- Output ONLY valid JSON`

const sufficiencyPromptTemplate = `You are the research sufficiency judge. Decide whether the insights gathered so far answer the goal, GIVEN WHAT THE SCHEMA CAN PROVIDE.

GOAL:
{{.Goal}}

TASKS COMPLETED: {{.TaskCount}}
INSIGHTS GATHERED: {{len .Insights}}

DATABASE SCHEMA (the ONLY data available):
{{.Schema}}

CURRENT INSIGHTS:
{{range .Insights}}- {{.Title}}: {{.Summary}} ({{.Type}})
{{else}}(none)
{{end}}
DECISION LOGIC:
1. Compare the goal against the schema and list what is still missing.
2. For each missing item, check whether it exists in the schema. If the tables or columns do not exist, that part of the goal CANNOT be answered: treat it as done and do not ask for it.
3. More than 3 solid insights from the available tables is usually enough.

INSTRUCTIONS:
Output JSON with this schema:
{
  "hasEnoughInfo": boolean,
  "reasoning": "string",
  "missingInfo": ["data still needed that the schema can provide"]
}

RULES:
- Output ONLY valid JSON`
