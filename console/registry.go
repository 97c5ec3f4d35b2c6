package console

import (
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/panyam/vulnviz/metrics"
)

// ReaperConfig configures the background idle-canvas reaper.
type ReaperConfig struct {
	// IdleTimeout is how long a canvas may go unused before it is closed.
	// Default: 30 minutes.
	IdleTimeout time.Duration

	// SweepInterval is how often the reaper scans for idle canvases.
	// Default: 1 minute.
	SweepInterval time.Duration

	// OnReap is called for each closed canvas, outside the lock.
	OnReap func(id string)
}

// Registry maps session canvas ids to canvases, creating them on demand.
type Registry struct {
	mu       sync.RWMutex
	canvases map[string]*Canvas
	opts     []CanvasOption
	metrics  *metrics.Metrics

	reaperStop chan struct{}
	reaperDone chan struct{}
}

// NewRegistry creates an empty registry. opts are applied to every canvas
// it creates.
func NewRegistry(m *metrics.Metrics, opts ...CanvasOption) *Registry {
	r := &Registry{
		canvases: make(map[string]*Canvas),
		opts:     append([]CanvasOption{WithMetrics(m)}, opts...),
		metrics:  m,
	}
	m.TrackTooltips(r.TooltipCount)
	return r
}

// NewID returns a fresh canvas id.
func NewID() (string, error) { return gonanoid.New() }

// Get returns the live canvas with id.
func (r *Registry) Get(id string) (*Canvas, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.canvases[id]
	return c, ok
}

// GetOrCreate returns the canvas with id, creating it when it does not
// exist. An empty id gets a generated one.
func (r *Registry) GetOrCreate(id string) (*Canvas, error) {
	if id != "" {
		if c, ok := r.Get(id); ok {
			return c, nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id == "" {
		var err error
		if id, err = NewID(); err != nil {
			return nil, err
		}
	} else if c, ok := r.canvases[id]; ok {
		return c, nil
	}
	c, err := NewCanvas(id, r.opts...)
	if err != nil {
		return nil, err
	}
	r.canvases[id] = c
	slog.Debug("canvas created", "canvas", id)
	return c, nil
}

// Remove closes and forgets the canvas with id.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	c, ok := r.canvases[id]
	delete(r.canvases, id)
	r.mu.Unlock()
	if ok {
		c.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.canvases)
}

// TooltipCount sums the attached tooltips of every live canvas.
func (r *Registry) TooltipCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range r.canvases {
		n += c.TooltipCount()
	}
	return n
}

// StartReaper launches a background goroutine that closes idle canvases.
// Call Stop or Close to shut it down.
func (r *Registry) StartReaper(cfg *ReaperConfig) {
	if cfg == nil {
		cfg = &ReaperConfig{}
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Minute
	}
	r.Stop()

	r.reaperStop = make(chan struct{})
	r.reaperDone = make(chan struct{})
	go r.reapLoop(cfg, r.reaperStop, r.reaperDone)
	slog.Info("canvas reaper started",
		"idle_timeout", cfg.IdleTimeout,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (r *Registry) Stop() {
	if r.reaperStop != nil {
		close(r.reaperStop)
		<-r.reaperDone
		r.reaperStop = nil
		r.reaperDone = nil
	}
}

// Close stops the reaper and closes every canvas.
func (r *Registry) Close() {
	r.Stop()
	r.mu.Lock()
	canvases := r.canvases
	r.canvases = make(map[string]*Canvas)
	r.mu.Unlock()
	for _, c := range canvases {
		c.Close()
	}
}

func (r *Registry) reapLoop(cfg *ReaperConfig, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			r.sweep(cfg, now)
		}
	}
}

// sweep closes canvases unused since before now - IdleTimeout.
func (r *Registry) sweep(cfg *ReaperConfig, now time.Time) int {
	var idle []*Canvas
	r.mu.Lock()
	for id, c := range r.canvases {
		if now.Sub(c.LastUsed()) > cfg.IdleTimeout {
			idle = append(idle, c)
			delete(r.canvases, id)
		}
	}
	r.mu.Unlock()

	for _, c := range idle {
		c.Close()
		slog.Info("canvas reaper closed idle canvas",
			"canvas", c.ID(),
			"idle_timeout", cfg.IdleTimeout)
		if cfg.OnReap != nil {
			cfg.OnReap(c.ID())
		}
	}
	return len(idle)
}
