package console

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panyam/vulnviz/prediction"
	"github.com/panyam/vulnviz/upload"
	"github.com/panyam/vulnviz/viz"
)

// fakePredictor answers every snippet with result, or err when set.
type fakePredictor struct {
	mu       sync.Mutex
	result   *prediction.Result
	err      error
	snippets []string
}

func (f *fakePredictor) Predict(_ context.Context, snippet string) (*prediction.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if snippet == "" {
		return nil, prediction.ErrEmptySnippet
	}
	f.snippets = append(f.snippets, snippet)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakePredictor) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snippets)
}

func sampleResult() *prediction.Result {
	return &prediction.Result{
		VulnerabilityCategory: "SQL Injection",
		Confidence:            0.62,
		Probabilities: prediction.Probabilities{
			{Category: "SQL Injection", Value: 0.62},
			{Category: "CSRF", Value: 0.25},
			{Category: "DoS", Value: 0.13},
		},
	}
}

func newTestCanvas(t *testing.T, p prediction.Predictor, opts ...CanvasOption) *Canvas {
	t.Helper()
	if p != nil {
		opts = append([]CanvasOption{WithPredictor(p)}, opts...)
	}
	c, err := NewCanvas("test", opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestCanvasShow(t *testing.T) {
	c := newTestCanvas(t, nil)
	assert.Equal(t, viz.StateEmpty, c.Pie().State())
	assert.Equal(t, 0, c.TooltipCount())

	require.NoError(t, c.Show(sampleResult()))
	assert.Equal(t, viz.StateRendered, c.Pie().State())
	assert.Equal(t, viz.StateRendered, c.Heatmap().State())
	assert.Equal(t, 2, c.TooltipCount(), "one tooltip per chart")
	assert.Equal(t, 3, c.Heatmap().ShapeCount())

	svg, err := c.SVG(ChartPie)
	require.NoError(t, err)
	assert.Contains(t, svg, `<svg width="350" height="350"`)

	require.NoError(t, c.Show(nil))
	assert.Equal(t, viz.StateEmpty, c.Pie().State())
	assert.Equal(t, 0, c.TooltipCount())
	assert.Nil(t, c.Result())
}

func TestCanvasPredict(t *testing.T) {
	p := &fakePredictor{result: sampleResult()}
	c := newTestCanvas(t, p)
	ctx := context.Background()

	require.NoError(t, c.Predict(ctx, "SELECT 1"))
	assert.Empty(t, c.Banner())
	assert.Equal(t, "SQL Injection", c.Result().VulnerabilityCategory)
	assert.Equal(t, []viz.ShapeKey{
		{Group: "Prediction", Name: "SQL Injection"},
		{Group: "Prediction", Name: "CSRF"},
		{Group: "Prediction", Name: "DoS"},
	}, c.Heatmap().Keys())

	t.Run("Empty Snippet", func(t *testing.T) {
		err := c.Predict(ctx, "")
		assert.ErrorIs(t, err, prediction.ErrEmptySnippet)
		assert.Equal(t, "Please enter a snippet of your code first.", c.Banner())
		assert.NotNil(t, c.Result(), "previous result stays")
	})

	t.Run("Service Failure Keeps Previous Result", func(t *testing.T) {
		p.mu.Lock()
		p.err = &prediction.APIError{StatusCode: 500, Body: "boom"}
		p.mu.Unlock()
		err := c.Predict(ctx, "SELECT 2")
		var apiErr *prediction.APIError
		assert.True(t, errors.As(err, &apiErr))
		assert.Equal(t, BannerPredictionFailed, c.Banner())
		assert.Equal(t, viz.StateRendered, c.Pie().State())
	})

	t.Run("Recovery Clears Banner", func(t *testing.T) {
		p.mu.Lock()
		p.err = nil
		p.mu.Unlock()
		require.NoError(t, c.Predict(ctx, "SELECT 3"))
		assert.Empty(t, c.Banner())
	})
}

func TestCanvasPredictWithoutService(t *testing.T) {
	c := newTestCanvas(t, nil)
	assert.ErrorIs(t, c.Predict(context.Background(), "x"), ErrNoPredictor)
	assert.Equal(t, BannerPredictionFailed, c.Banner())
}

func TestCanvasStrictAdapter(t *testing.T) {
	res := sampleResult()
	res.Probabilities = append(res.Probabilities, prediction.Probability{Category: "CSRF", Value: 0.5})

	lenient := newTestCanvas(t, nil)
	require.NoError(t, lenient.Show(res))
	assert.Equal(t, 3, lenient.Heatmap().ShapeCount())

	strict := newTestCanvas(t, nil, WithAdapter(prediction.Adapter{Strict: true}))
	assert.ErrorIs(t, strict.Show(res), prediction.ErrDuplicateCategory)
	assert.Equal(t, viz.StateEmpty, strict.Pie().State())
}

func TestCanvasUpload(t *testing.T) {
	p := &fakePredictor{result: sampleResult()}
	c := newTestCanvas(t, p)
	ctx := context.Background()

	err := c.Upload(ctx, []upload.File{{Name: "notes.txt", Size: 10}}, "hello")
	var uerr *upload.Error
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "⚠ Invalid File is Type: .txt", c.Banner())
	assert.Equal(t, 0, p.calls(), "invalid uploads never reach the service")

	require.NoError(t, c.Upload(ctx, []upload.File{{Name: "app.py", Size: 5}}, "print(1)"))
	assert.Equal(t, []string{"print(1)"}, p.snippets)
	assert.Empty(t, c.Banner())
}

func TestCanvasPointer(t *testing.T) {
	c := newTestCanvas(t, nil)
	require.NoError(t, c.Show(sampleResult()))

	st, err := c.Pointer(ChartPie, EventEnter, viz.ShapeKey{Name: "CSRF"}, viz.Point{X: 10, Y: 10})
	require.NoError(t, err)
	assert.True(t, st.Tooltip.Visible)
	assert.Equal(t, "<strong>CSRF</strong>: 25", st.Tooltip.Content)

	st, err = c.Pointer(ChartPie, EventMove, viz.ShapeKey{}, viz.Point{X: 60, Y: 10})
	require.NoError(t, err)
	assert.Equal(t, 70.0, st.Tooltip.Left)

	st, err = c.Pointer(ChartPie, EventLeave, viz.ShapeKey{}, viz.Point{})
	require.NoError(t, err)
	assert.False(t, st.Tooltip.Visible)

	_, err = c.Pointer("bar", EventMove, viz.ShapeKey{}, viz.Point{})
	assert.ErrorIs(t, err, ErrUnknownChart)
	_, err = c.Pointer(ChartHeatmap, "click", viz.ShapeKey{}, viz.Point{})
	assert.ErrorIs(t, err, ErrUnknownEvent)
	_, err = c.Pointer(ChartHeatmap, EventEnter, viz.ShapeKey{Group: "Nope", Name: "CSRF"}, viz.Point{})
	assert.ErrorIs(t, err, viz.ErrUnknownShape)
}

func TestCanvasClose(t *testing.T) {
	c := newTestCanvas(t, nil)
	require.NoError(t, c.Show(sampleResult()))
	require.Equal(t, 2, c.TooltipCount())

	c.Close()
	c.Close()
	assert.True(t, c.Closed())
	assert.Equal(t, 0, c.TooltipCount())
	assert.ErrorIs(t, c.Show(sampleResult()), ErrCanvasClosed)
	assert.ErrorIs(t, c.Predict(context.Background(), "x"), ErrCanvasClosed)
	_, err := c.SVG(ChartHeatmap)
	assert.ErrorIs(t, err, ErrCanvasClosed)
	_, err = c.Pointer(ChartPie, EventMove, viz.ShapeKey{}, viz.Point{})
	assert.ErrorIs(t, err, ErrCanvasClosed)
}
