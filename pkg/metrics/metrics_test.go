package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()

	r.RunFinished("completed", 3)
	r.RunFinished("failed", 25)
	r.RunFinished("completed", 1)
	r.ToolDispatched("navigate", false)
	r.ToolDispatched("click_element", true)
	r.ToolDispatched("click_element", true)
	r.ReasoningObserved(120*time.Millisecond, nil)
	r.ReasoningObserved(time.Second, errors.New("boom"))
	r.QuestionAsked()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues("completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.toolDispatches.WithLabelValues("navigate", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.toolDispatches.WithLabelValues("click_element", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.operatorQuestions))
	assert.Equal(t, 2, testutil.CollectAndCount(r.reasoningDuration))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.RunFinished("completed", 1)
		r.ToolDispatched("wait", false)
		r.ReasoningObserved(time.Millisecond, nil)
		r.QuestionAsked()
	})
	assert.Nil(t, r.Registry())
}

func TestHandler(t *testing.T) {
	r := New()
	r.ToolDispatched("navigate", false)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `webpilot_orchestrator_tool_dispatches_total{result="ok",tool="navigate"} 1`)
}
