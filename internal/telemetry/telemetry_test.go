package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ConceptCodes/deep-sql-research/internal/database"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
	"github.com/ConceptCodes/deep-sql-research/internal/production"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ oracle.Observer          = (*Recorder)(nil)
	_ database.Observer        = (*Recorder)(nil)
	_ production.StageObserver = (*Recorder)(nil)
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()

	r.ObserveOracleCall("plan", oracle.OutcomeOK, 2*time.Second)
	r.ObserveOracleCall("plan", oracle.OutcomeInvalid, time.Second)
	r.ObserveOracleCall("gate", oracle.OutcomeOK, time.Second)
	r.ObserveQuery(OutcomeOK, 10*time.Millisecond)
	r.ObserveQuery(OutcomeError, 5*time.Millisecond)
	r.ObserveQuery(OutcomeError, 5*time.Millisecond)
	r.ObserveBranch(OutcomeFailed)
	r.AddTasks(3)
	r.AddTasks(2)
	r.AddInsights(4)
	r.ObserveRun(OutcomeOK, 30*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.oracleCalls.WithLabelValues("plan", oracle.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.oracleCalls.WithLabelValues("plan", oracle.OutcomeInvalid)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.queries.WithLabelValues(OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.branches.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.tasks))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.insights))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 3, testutil.CollectAndCount(r.oracleCalls))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveStage(production.StageTimeline, time.Millisecond)
	r.AddInsights(1)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "dsr_insights_total 1")
	assert.Contains(t, string(body), `dsr_stage_duration_seconds_count{stage="timeline"} 1`)
}

func TestRecorders_AreIndependent(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.AddTasks(1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.tasks))
}
