package viz

import "sort"

// Element is a node of the retained drawing. Data-bound shapes carry a
// Key; decorations (axes, legend, groups) do not.
type Element struct {
	Tag      string
	Key      *ShapeKey
	Attrs    map[string]string
	Style    map[string]string
	Text     string
	Children []*Element
}

// NewElement creates an element with empty attribute and style maps.
func NewElement(tag string) *Element {
	return &Element{Tag: tag, Attrs: map[string]string{}, Style: map[string]string{}}
}

// Set sets an attribute and returns the element for chaining.
func (e *Element) Set(name, value string) *Element {
	e.Attrs[name] = value
	return e
}

// SetStyle sets an inline style property.
func (e *Element) SetStyle(name, value string) *Element {
	e.Style[name] = value
	return e
}

// Append adds children and returns the receiver.
func (e *Element) Append(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// WithText sets the text content.
func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// JoinResult reports what a Join did.
type JoinResult struct {
	Entered int
	Updated int
	Exited  int
}

// Layer is a keyed collection of shapes. It owns existence and identity of
// shapes only; callers decide their geometry and style.
type Layer struct {
	Name  string
	Group *Element // attributes applied to the layer's <g>

	order []ShapeKey
	index map[ShapeKey]*Element
}

func newLayer(name string) *Layer {
	return &Layer{Name: name, Group: NewElement("g"), index: make(map[ShapeKey]*Element)}
}

// Join converges the layer to exactly one element per distinct key, in
// first-occurrence order. Elements for vanished keys are dropped, new keys
// are created with create, and surviving keys keep their element.
func (l *Layer) Join(keys []ShapeKey, create func(ShapeKey) *Element) ([]*Element, JoinResult) {
	var res JoinResult
	next := make(map[ShapeKey]*Element, len(keys))
	order := make([]ShapeKey, 0, len(keys))
	for _, k := range keys {
		if _, dup := next[k]; dup {
			continue
		}
		el, ok := l.index[k]
		if ok {
			res.Updated++
		} else {
			el = create(k)
			kk := k
			el.Key = &kk
			res.Entered++
		}
		next[k] = el
		order = append(order, k)
	}
	for k := range l.index {
		if _, keep := next[k]; !keep {
			res.Exited++
		}
	}
	l.index = next
	l.order = order
	return l.Elements(), res
}

// Get returns the element for key.
func (l *Layer) Get(k ShapeKey) (*Element, bool) {
	el, ok := l.index[k]
	return el, ok
}

// Keys returns the keys in draw order.
func (l *Layer) Keys() []ShapeKey { return append([]ShapeKey(nil), l.order...) }

// Elements returns the shapes in draw order.
func (l *Layer) Elements() []*Element {
	out := make([]*Element, len(l.order))
	for i, k := range l.order {
		out[i] = l.index[k]
	}
	return out
}

// Len returns the number of shapes.
func (l *Layer) Len() int { return len(l.order) }

// Surface is the drawing owned by one chart instance: a root transform,
// unkeyed decorations and named keyed layers, drawn in insertion order.
type Surface struct {
	Width  float64
	Height float64
	Root   *Element // the translated <g> everything is drawn into

	items  []surfaceItem
	layers map[string]*Layer
}

// surfaceItem preserves draw order across decorations and layers.
type surfaceItem struct {
	decoration *Element
	layer      *Layer
}

func NewSurface() *Surface {
	s := &Surface{}
	s.Clear()
	return s
}

// Clear drops every decoration and layer.
func (s *Surface) Clear() {
	s.Root = NewElement("g")
	s.items = nil
	s.layers = make(map[string]*Layer)
}

// Resize sets the outer size of the drawing.
func (s *Surface) Resize(w, h float64) {
	s.Width, s.Height = w, h
}

// Decorate appends unkeyed elements (axes, legend, titles).
func (s *Surface) Decorate(els ...*Element) {
	for _, el := range els {
		s.items = append(s.items, surfaceItem{decoration: el})
	}
}

// Layer returns the named layer, creating it at the current draw position.
func (s *Surface) Layer(name string) *Layer {
	if l, ok := s.layers[name]; ok {
		return l
	}
	l := newLayer(name)
	s.layers[name] = l
	s.items = append(s.items, surfaceItem{layer: l})
	return l
}

// FindLayer returns an existing layer without creating it.
func (s *Surface) FindLayer(name string) (*Layer, bool) {
	l, ok := s.layers[name]
	return l, ok
}

// ShapeCount returns the number of keyed shapes across all layers.
func (s *Surface) ShapeCount() int {
	n := 0
	for _, l := range s.layers {
		n += l.Len()
	}
	return n
}

// IsEmpty reports whether nothing has been drawn.
func (s *Surface) IsEmpty() bool { return len(s.items) == 0 }

// Tree materializes the drawing as a single element tree rooted at Root.
func (s *Surface) Tree() *Element {
	root := *s.Root
	root.Children = nil
	for _, it := range s.items {
		if it.decoration != nil {
			root.Children = append(root.Children, it.decoration)
			continue
		}
		g := *it.layer.Group
		g.Children = it.layer.Elements()
		root.Children = append(root.Children, &g)
	}
	return &root
}
