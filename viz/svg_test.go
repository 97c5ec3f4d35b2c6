package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeSVGEscapesText(t *testing.T) {
	s := NewSurface()
	s.Resize(100, 50)
	s.Decorate(NewElement("text").Set("title", `a"b`).WithText("<b>&</b>"))
	svg := EncodeSVG(s)
	assert.Contains(t, svg, "&lt;b&gt;&amp;&lt;/b&gt;")
	assert.Contains(t, svg, `title="a&#34;b"`)
	assert.NotContains(t, svg, "<b>")
}

func TestEncodeSVGSortsAttributes(t *testing.T) {
	s := NewSurface()
	s.Resize(10, 10)
	s.Decorate(NewElement("rect").Set("y", "1").Set("x", "2").Set("height", "3").SetStyle("stroke", "#fff").SetStyle("fill", "red"))
	svg := EncodeSVG(s)
	assert.Contains(t, svg, `<rect height="3" x="2" y="1" style="fill: red; stroke: #fff" />`)
}

func TestEncodeSVGKeyedElements(t *testing.T) {
	s := NewSurface()
	s.Layer("cells").Join([]ShapeKey{{Group: "UI", Name: "CSRF"}}, func(ShapeKey) *Element { return NewElement("rect") })
	svg := EncodeSVG(s)
	assert.Contains(t, svg, `data-key="&#34;UI&#34;/&#34;CSRF&#34;" data-group="UI" data-name="CSRF"`)
}

func TestEncodeSVGKeyPartsKeepSeparators(t *testing.T) {
	s := NewSurface()
	s.Layer("wedges").Join([]ShapeKey{{Name: "Path/Traversal"}, {Group: "a/b", Name: "c,d"}}, func(ShapeKey) *Element { return NewElement("path") })
	svg := EncodeSVG(s)
	assert.Contains(t, svg, `data-key="&#34;Path/Traversal&#34;" data-name="Path/Traversal"`)
	assert.NotContains(t, svg, `data-group="" `)
	assert.Contains(t, svg, `data-group="a/b" data-name="c,d"`)
}

func TestTooltipHTML(t *testing.T) {
	tip := Tooltip{ID: "pie-tooltip-x", Class: "tooltip pie-tooltip", Content: "<strong>DoS</strong>: 30", Left: 110, Top: 80.5}
	hidden := tip.HTML()
	assert.True(t, strings.HasPrefix(hidden, `<div id="pie-tooltip-x" class="tooltip pie-tooltip"`))
	assert.Contains(t, hidden, "left: 110px; top: 80.5px; visibility: hidden")
	assert.Contains(t, hidden, ">"+tip.Content+"</div>")

	tip.Visible = true
	assert.Contains(t, tip.HTML(), "visibility: visible")
}
