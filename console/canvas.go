// Package console holds the stateful side of the application: one Canvas
// per browser session, each with its own Document, pie chart and heatmap.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panyam/vulnviz/metrics"
	"github.com/panyam/vulnviz/prediction"
	"github.com/panyam/vulnviz/upload"
	"github.com/panyam/vulnviz/viz"
)

// BannerPredictionFailed is shown when the classification service could not
// be reached or answered with an error.
const BannerPredictionFailed = "failed to fetch the prediction. Make sure backend is running!"

// Chart kinds a Canvas exposes.
const (
	ChartPie     = "pie"
	ChartHeatmap = "heatmap"
)

// Pointer events understood by Canvas.Pointer.
const (
	EventEnter = "enter"
	EventMove  = "move"
	EventLeave = "leave"
)

var (
	ErrCanvasClosed = errors.New("console: canvas is closed")
	ErrUnknownChart = errors.New("console: unknown chart")
	ErrUnknownEvent = errors.New("console: unknown pointer event")
	ErrNoPredictor  = errors.New("console: no prediction service configured")
)

type canvasOptions struct {
	predictor   prediction.Predictor
	adapter     prediction.Adapter
	metrics     *metrics.Metrics
	logger      *slog.Logger
	pieOpts     []viz.Option
	heatmapOpts []viz.Option
}

// CanvasOption configures a Canvas.
type CanvasOption func(*canvasOptions)

func WithPredictor(p prediction.Predictor) CanvasOption {
	return func(o *canvasOptions) { o.predictor = p }
}

// WithAdapter sets how probabilities become chart records; a strict
// adapter rejects responses with repeated categories.
func WithAdapter(a prediction.Adapter) CanvasOption {
	return func(o *canvasOptions) { o.adapter = a }
}

func WithMetrics(m *metrics.Metrics) CanvasOption {
	return func(o *canvasOptions) { o.metrics = m }
}

func WithLogger(l *slog.Logger) CanvasOption {
	return func(o *canvasOptions) { o.logger = l }
}

// WithPieOptions appends options to the pie chart's defaults (350×350).
func WithPieOptions(opts ...viz.Option) CanvasOption {
	return func(o *canvasOptions) { o.pieOpts = append(o.pieOpts, opts...) }
}

func WithHeatmapOptions(opts ...viz.Option) CanvasOption {
	return func(o *canvasOptions) { o.heatmapOpts = append(o.heatmapOpts, opts...) }
}

// Canvas is one session's view: the last prediction, the banner and the
// two charts drawn from it. Methods are safe for concurrent use.
type Canvas struct {
	mu        sync.Mutex
	id        string
	doc       *viz.Document
	pie       *viz.PieChart
	heatmap   *viz.HeatmapChart
	predictor prediction.Predictor
	adapter   prediction.Adapter
	metrics   *metrics.Metrics
	log       *slog.Logger

	result   *prediction.Result
	banner   string
	lastUsed time.Time
	closed   bool
}

// NewCanvas creates a canvas with both charts mounted and empty.
func NewCanvas(id string, opts ...CanvasOption) (*Canvas, error) {
	o := canvasOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.With("canvas", id)

	pieOpts := append([]viz.Option{viz.WithSize(350, 350), viz.WithLogger(log)}, o.pieOpts...)
	pie, err := viz.NewPieChart(pieOpts...)
	if err != nil {
		return nil, err
	}
	heatmapOpts := append([]viz.Option{viz.WithLogger(log)}, o.heatmapOpts...)
	heatmap, err := viz.NewHeatmapChart(heatmapOpts...)
	if err != nil {
		return nil, err
	}

	doc := viz.NewDocument()
	if err := pie.Mount(doc); err != nil {
		return nil, err
	}
	if err := heatmap.Mount(doc); err != nil {
		pie.Unmount()
		return nil, err
	}
	o.metrics.CanvasOpened()
	return &Canvas{
		id:        id,
		doc:       doc,
		pie:       pie,
		heatmap:   heatmap,
		predictor: o.predictor,
		adapter:   o.adapter,
		metrics:   o.metrics,
		log:       log,
		lastUsed:  time.Now(),
	}, nil
}

func (c *Canvas) ID() string                 { return c.id }
func (c *Canvas) Document() *viz.Document    { return c.doc }
func (c *Canvas) Pie() *viz.PieChart         { return c.pie }
func (c *Canvas) Heatmap() *viz.HeatmapChart { return c.heatmap }

func (c *Canvas) Predictor() prediction.Predictor { return c.predictor }

// Result returns the last successful prediction, or nil.
func (c *Canvas) Result() *prediction.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Banner returns the current warning message, empty when there is none.
func (c *Canvas) Banner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

// LastUsed is when the canvas last served a request.
func (c *Canvas) LastUsed() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed
}

func (c *Canvas) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// touch must be called with mu held.
func (c *Canvas) touch() error {
	if c.closed {
		return ErrCanvasClosed
	}
	c.lastUsed = time.Now()
	return nil
}

// Show makes result the canvas's prediction and redraws both charts from
// its probabilities. A nil result empties the charts.
func (c *Canvas) Show(result *prediction.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.touch(); err != nil {
		return err
	}
	return c.show(result)
}

func (c *Canvas) show(result *prediction.Result) error {
	var probs prediction.Probabilities
	if result != nil {
		probs = result.Probabilities
	}
	pieRecords, err := c.adapter.ToPie(probs)
	if err != nil {
		return err
	}
	heatRecords, err := c.adapter.ToHeatmap(probs)
	if err != nil {
		return err
	}
	if err := c.pie.SetData(pieRecords); err != nil {
		return fmt.Errorf("drawing pie: %w", err)
	}
	c.metrics.ChartRendered(ChartPie)
	if err := c.heatmap.SetData(heatRecords); err != nil {
		return fmt.Errorf("drawing heatmap: %w", err)
	}
	c.metrics.ChartRendered(ChartHeatmap)
	c.result = result
	return nil
}

// Predict classifies snippet and shows the result. On failure the banner
// explains what went wrong and the previous result stays on screen. The
// canvas is not locked while the service is called.
func (c *Canvas) Predict(ctx context.Context, snippet string) error {
	c.mu.Lock()
	err := c.touch()
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.predict(ctx, snippet)
}

func (c *Canvas) predict(ctx context.Context, snippet string) error {
	if c.predictor == nil {
		c.setBanner(BannerPredictionFailed)
		return ErrNoPredictor
	}
	start := time.Now()
	result, err := c.predictor.Predict(ctx, snippet)
	elapsed := time.Since(start)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrCanvasClosed
	}
	switch {
	case errors.Is(err, prediction.ErrEmptySnippet):
		c.metrics.PredictionDone(metrics.OutcomeInvalid, elapsed)
		c.banner = err.Error()
		return err
	case err != nil:
		var apiErr *prediction.APIError
		outcome := metrics.OutcomeFailed
		if errors.As(err, &apiErr) {
			outcome = metrics.OutcomeAPIError
		}
		c.metrics.PredictionDone(outcome, elapsed)
		c.log.Warn("prediction failed", "err", err, "elapsed", elapsed)
		c.banner = BannerPredictionFailed
		return err
	}
	c.metrics.PredictionDone(metrics.OutcomeOK, elapsed)
	if err := c.show(result); err != nil {
		c.log.Error("rendering prediction", "err", err)
		c.banner = BannerPredictionFailed
		return err
	}
	c.banner = ""
	c.log.Info("prediction shown", "category", result.VulnerabilityCategory, "confidence", result.Confidence)
	return nil
}

func (c *Canvas) setBanner(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.banner = msg
}

// Upload validates the submitted files and classifies the content of the
// accepted one.
func (c *Canvas) Upload(ctx context.Context, files []upload.File, content string) error {
	c.mu.Lock()
	if err := c.touch(); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := upload.Validate(files); err != nil {
		var uerr *upload.Error
		if errors.As(err, &uerr) {
			c.banner = uerr.Banner()
		}
		c.metrics.PredictionDone(metrics.OutcomeInvalid, 0)
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()
	return c.predict(ctx, content)
}

// Chart returns the chart of the given kind.
func (c *Canvas) Chart(kind string) (viz.Chart, error) {
	switch kind {
	case ChartPie:
		return c.pie, nil
	case ChartHeatmap:
		return c.heatmap, nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownChart, kind)
}

// Pointer dispatches a pointer event to a chart and returns its resulting
// interaction state. key is only used by enter.
func (c *Canvas) Pointer(kind, event string, key viz.ShapeKey, at viz.Point) (viz.InteractionState, error) {
	c.mu.Lock()
	if err := c.touch(); err != nil {
		c.mu.Unlock()
		return viz.InteractionState{}, err
	}
	c.mu.Unlock()

	chart, err := c.Chart(kind)
	if err != nil {
		return viz.InteractionState{}, err
	}
	switch event {
	case EventEnter:
		err = chart.PointerEnter(key, at)
	case EventMove:
		err = chart.PointerMove(at)
	case EventLeave:
		err = chart.PointerLeave()
	default:
		return viz.InteractionState{}, fmt.Errorf("%w %q", ErrUnknownEvent, event)
	}
	if err != nil {
		return viz.InteractionState{}, err
	}
	c.metrics.PointerEvent(kind, event)
	return chart.Interaction(), nil
}

// SVG renders one chart of the canvas.
func (c *Canvas) SVG(kind string) (string, error) {
	chart, err := c.Chart(kind)
	if err != nil {
		return "", err
	}
	svg, err := chart.SVG()
	if errors.Is(err, viz.ErrNotMounted) {
		return "", ErrCanvasClosed
	}
	return svg, err
}

// TooltipCount is the number of tooltips attached to the canvas's document.
func (c *Canvas) TooltipCount() int { return c.doc.TooltipCount() }

// Close unmounts both charts, releasing their tooltips. It is safe to call
// more than once.
func (c *Canvas) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.pie.Unmount()
	c.heatmap.Unmount()
	c.closed = true
	c.metrics.CanvasClosed()
	c.log.Debug("canvas closed")
}
