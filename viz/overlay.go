package viz

import (
	"sort"
	"sync"
)

// Tooltip is the floating box attached to a Document for one chart
// instance.
type Tooltip struct {
	ID      string  `json:"id"`
	Class   string  `json:"class"`
	Visible bool    `json:"visible"`
	Content string  `json:"content"` // HTML fragment, labels already escaped
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
}

// Document stands in for the page body: the place tooltips live. It is
// shared by every chart of one page and safe for concurrent use.
type Document struct {
	mu       sync.Mutex
	tooltips map[string]*Tooltip
}

func NewDocument() *Document {
	return &Document{tooltips: make(map[string]*Tooltip)}
}

// acquire returns the tooltip with id, creating it if it is not attached.
func (d *Document) acquire(id, class string) *Tooltip {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.tooltips[id]; ok {
		return t
	}
	t := &Tooltip{ID: id, Class: class}
	d.tooltips[id] = t
	return t
}

func (d *Document) release(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.tooltips, id)
}

// TooltipCount returns the number of attached tooltips.
func (d *Document) TooltipCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tooltips)
}

// Tooltips returns copies of the attached tooltips ordered by ID.
func (d *Document) Tooltips() []Tooltip {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Tooltip, 0, len(d.tooltips))
	for _, t := range d.tooltips {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InteractionState is the hover state of one chart instance.
type InteractionState struct {
	Hovered *ShapeKey `json:"hovered,omitempty"`
	Tooltip Tooltip   `json:"tooltip"`
}

// Emphasis is the style applied to a hovered shape and the baseline it
// reverts to.
type Emphasis struct {
	Hover map[string]string
	Base  map[string]string
}

func (e Emphasis) apply(el *Element, hover bool) {
	styles := e.Base
	if hover {
		styles = e.Hover
	}
	for k, v := range styles {
		el.Style[k] = v
	}
}

// overlay owns the tooltip and hover emphasis of a chart instance. The
// chart serializes calls into it.
type overlay struct {
	id       string
	class    string
	offset   Point
	emphasis Emphasis

	doc     *Document
	tooltip *Tooltip
	hovered *ShapeKey
}

func newOverlay(id, class string, offset Point, emphasis Emphasis) *overlay {
	return &overlay{id: id, class: class, offset: offset, emphasis: emphasis}
}

// attach acquires the tooltip on doc, reusing one already attached.
func (o *overlay) attach(doc *Document) {
	o.doc = doc
	o.tooltip = doc.acquire(o.id, o.class)
	o.reset()
}

// detach releases the tooltip from its document.
func (o *overlay) detach() {
	if o.doc != nil && o.tooltip != nil {
		o.doc.release(o.id)
	}
	o.tooltip = nil
	o.hovered = nil
}

// reset hides the tooltip and forgets the hovered shape. The shapes it
// emphasized have been rebuilt by the caller.
func (o *overlay) reset() {
	o.hovered = nil
	if o.tooltip == nil {
		return
	}
	o.doc.mu.Lock()
	o.tooltip.Visible = false
	o.tooltip.Content = ""
	o.doc.mu.Unlock()
}

func (o *overlay) enter(key ShapeKey, el *Element, content string, at Point, lookup func(ShapeKey) (*Element, bool)) {
	if o.hovered != nil && *o.hovered != key {
		if prev, ok := lookup(*o.hovered); ok {
			o.emphasis.apply(prev, false)
		}
	}
	k := key
	o.hovered = &k
	o.emphasis.apply(el, true)
	o.update(func(t *Tooltip) {
		t.Visible = true
		t.Content = content
		o.place(t, at)
	})
}

func (o *overlay) move(at Point) {
	if o.hovered == nil {
		return
	}
	o.update(func(t *Tooltip) { o.place(t, at) })
}

func (o *overlay) leave(lookup func(ShapeKey) (*Element, bool)) {
	if o.hovered == nil {
		return
	}
	if el, ok := lookup(*o.hovered); ok {
		o.emphasis.apply(el, false)
	}
	o.hovered = nil
	o.update(func(t *Tooltip) { t.Visible = false })
}

func (o *overlay) place(t *Tooltip, at Point) {
	t.Left = at.X + o.offset.X
	t.Top = at.Y + o.offset.Y
}

func (o *overlay) update(f func(t *Tooltip)) {
	if o.tooltip == nil {
		return
	}
	o.doc.mu.Lock()
	defer o.doc.mu.Unlock()
	f(o.tooltip)
}

func (o *overlay) state() InteractionState {
	var s InteractionState
	if o.hovered != nil {
		k := *o.hovered
		s.Hovered = &k
	}
	if o.tooltip != nil {
		o.doc.mu.Lock()
		s.Tooltip = *o.tooltip
		o.doc.mu.Unlock()
	}
	return s
}
