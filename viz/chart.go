package viz

import (
	"fmt"
	"log/slog"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Margins around the plot area of a chart.
type Margins struct {
	Top    float64 `toml:"top" yaml:"top"`
	Right  float64 `toml:"right" yaml:"right"`
	Bottom float64 `toml:"bottom" yaml:"bottom"`
	Left   float64 `toml:"left" yaml:"left"`
}

// Config holds sizing, styling and collaborators of a chart instance.
type Config struct {
	Width         float64
	Height        float64
	Margins       Margins
	Padding       float64  // band padding as a fraction of the step
	Palette       []string // categorical colors
	Ramp          Interpolator
	TooltipOffset Point
	NewID         func() (string, error)
	Logger        *slog.Logger
}

// Option configures a chart.
type Option func(*Config)

// WithSize sets the outer size of the chart in pixels.
func WithSize(width, height float64) Option {
	return func(c *Config) {
		c.Width, c.Height = width, height
	}
}

func WithMargins(m Margins) Option {
	return func(c *Config) { c.Margins = m }
}

func WithPadding(p float64) Option {
	return func(c *Config) { c.Padding = p }
}

func WithPalette(palette []string) Option {
	return func(c *Config) {
		if len(palette) > 0 {
			c.Palette = append([]string(nil), palette...)
		}
	}
}

func WithRamp(ramp Interpolator) Option {
	return func(c *Config) { c.Ramp = ramp }
}

// WithTooltipOffset sets the offset between the pointer and the tooltip's
// top left corner.
func WithTooltipOffset(p Point) Option {
	return func(c *Config) { c.TooltipOffset = p }
}

// WithIDGenerator replaces the nanoid based instance id generator.
func WithIDGenerator(f func() (string, error)) Option {
	return func(c *Config) { c.NewID = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func defaultID() (string, error) { return gonanoid.New(12) }

// chartBase carries the lifecycle shared by every chart kind. All exported
// methods of the embedding chart hold mu for their whole duration, so a
// rebuild completes before any later pointer event is looked at.
type chartBase struct {
	mu      sync.Mutex
	kind    string
	id      string
	cfg     Config
	state   State
	doc     *Document
	surface *Surface
	overlay *overlay
	log     *slog.Logger

	hoverLayer string
	tips       map[ShapeKey]string

	// dropData forgets the embedding chart's dataset on Unmount.
	dropData func()
}

func newChartBase(kind, hoverLayer string, cfg Config, emphasis Emphasis, opts []Option) (*chartBase, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.NewID == nil {
		cfg.NewID = defaultID
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.Palette) == 0 {
		cfg.Palette = Category10
	}
	id, err := cfg.NewID()
	if err != nil {
		return nil, fmt.Errorf("viz: generating %s chart id: %w", kind, err)
	}
	return &chartBase{
		kind:       kind,
		id:         id,
		cfg:        cfg,
		surface:    NewSurface(),
		overlay:    newOverlay(kind+"-tooltip-"+id, "tooltip "+kind+"-tooltip", cfg.TooltipOffset, emphasis),
		log:        cfg.Logger.With("chart", kind, "id", id),
		hoverLayer: hoverLayer,
		tips:       map[ShapeKey]string{},
	}, nil
}

func (c *chartBase) ID() string   { return c.id }
func (c *chartBase) Kind() string { return c.kind }

// TooltipID is the id of the tooltip this instance attaches to its Document.
func (c *chartBase) TooltipID() string { return c.overlay.id }

func (c *chartBase) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *chartBase) mount(doc *Document, redraw func()) error {
	if doc == nil {
		return fmt.Errorf("viz: mounting %s chart on a nil document", c.kind)
	}
	if c.state != StateUnmounted {
		if c.doc == doc {
			return nil
		}
		return fmt.Errorf("viz: %s chart %s is already mounted", c.kind, c.id)
	}
	c.doc = doc
	c.state = StateEmpty
	redraw()
	return nil
}

// Unmount releases the tooltip and drops the drawing and its dataset, so a
// later Mount starts Empty. It is safe to call more than once.
func (c *chartBase) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateUnmounted {
		return
	}
	c.overlay.detach()
	c.surface.Clear()
	c.tips = map[ShapeKey]string{}
	if c.dropData != nil {
		c.dropData()
	}
	c.state = StateUnmounted
	c.doc = nil
	c.log.Debug("chart unmounted")
}

// rebuild clears the surface and redraws it from scratch. draw reports
// whether anything was drawn; when it was not the chart is Empty and holds
// no tooltip.
func (c *chartBase) rebuild(draw func(s *Surface, tips map[ShapeKey]string) bool) {
	if c.state == StateUnmounted {
		return
	}
	c.surface.Clear()
	c.surface.Resize(c.cfg.Width, c.cfg.Height)
	tips := map[ShapeKey]string{}
	if !draw(c.surface, tips) {
		c.surface.Clear()
		c.overlay.detach()
		c.tips = tips
		c.state = StateEmpty
		c.log.Debug("chart emptied")
		return
	}
	c.tips = tips
	c.overlay.attach(c.doc)
	c.state = StateRendered
	c.log.Debug("chart rebuilt", "shapes", c.surface.ShapeCount())
}

func (c *chartBase) lookup(k ShapeKey) (*Element, bool) {
	l, ok := c.surface.FindLayer(c.hoverLayer)
	if !ok {
		return nil, false
	}
	return l.Get(k)
}

func (c *chartBase) PointerEnter(key ShapeKey, at Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateUnmounted {
		return ErrNotMounted
	}
	el, ok := c.lookup(key)
	if !ok {
		return fmt.Errorf("%w %s", ErrUnknownShape, key)
	}
	c.overlay.enter(key, el, c.tips[key], at, c.lookup)
	return nil
}

func (c *chartBase) PointerMove(at Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateUnmounted {
		return ErrNotMounted
	}
	c.overlay.move(at)
	return nil
}

func (c *chartBase) PointerLeave() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateUnmounted {
		return ErrNotMounted
	}
	c.overlay.leave(c.lookup)
	return nil
}

func (c *chartBase) Interaction() InteractionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlay.state()
}

func (c *chartBase) Keys() []ShapeKey {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.surface.FindLayer(c.hoverLayer)
	if !ok {
		return nil
	}
	return l.Keys()
}

// Shape returns a copy of the element drawn for key.
func (c *chartBase) Shape(key ShapeKey) (Element, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.lookup(key)
	if !ok {
		return Element{}, false
	}
	cp := *el
	cp.Attrs = copyMap(el.Attrs)
	cp.Style = copyMap(el.Style)
	return cp, true
}

// ShapeCount returns the number of keyed shapes across all layers.
func (c *chartBase) ShapeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface.ShapeCount()
}

// SVG serializes the current drawing. An Empty chart yields an empty
// <svg> of the configured size.
func (c *chartBase) SVG() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateUnmounted {
		return "", ErrNotMounted
	}
	return EncodeSVG(c.surface), nil
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
