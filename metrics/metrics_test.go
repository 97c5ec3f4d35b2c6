package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsExposition(t *testing.T) {
	m := New()
	m.ChartRendered("pie")
	m.ChartRendered("pie")
	m.PointerEvent("heatmap", "enter")
	m.PredictionDone(OutcomeOK, 120*time.Millisecond)
	m.PredictionDone(OutcomeInvalid, 0)
	m.CanvasOpened()
	m.CanvasOpened()
	m.CanvasClosed()
	tooltips := 3
	m.TrackTooltips(func() int { return tooltips })
	m.TrackTooltips(func() int { return 99 })

	out := scrape(t, m)
	assert.Contains(t, out, `vulnviz_chart_renders_total{chart="pie"} 2`)
	assert.Contains(t, out, `vulnviz_pointer_events_total{chart="heatmap",event="enter"} 1`)
	assert.Contains(t, out, `vulnviz_predictions_total{outcome="ok"} 1`)
	assert.Contains(t, out, `vulnviz_predictions_total{outcome="invalid"} 1`)
	assert.Contains(t, out, "vulnviz_prediction_duration_seconds_count 1")
	assert.Contains(t, out, "vulnviz_live_canvases 1")
	assert.Contains(t, out, "vulnviz_live_tooltips 3")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ChartRendered("pie")
		m.PointerEvent("pie", "move")
		m.PredictionDone(OutcomeFailed, time.Second)
		m.CanvasOpened()
		m.CanvasClosed()
		m.TrackTooltips(func() int { return 0 })
	})
}
