package viz

import (
	"bytes"
	"fmt"
	"html"
	"strings"
)

const svgStyle = `.axis text { font: 12px sans-serif; fill: #000; }
.axis line, .axis path { fill: none; stroke: #000; shape-rendering: crispEdges; }
.wedge, .cell { cursor: pointer; }`

// EncodeSVG serializes a surface as a standalone SVG document. Attributes
// are written in sorted order so equal drawings produce equal bytes.
func EncodeSVG(s *Surface) string {
	var b bytes.Buffer
	b.WriteString(fmt.Sprintf("<svg width=\"%s\" height=\"%s\" xmlns=\"http://www.w3.org/2000/svg\">\n", num(s.Width), num(s.Height)))
	if !s.IsEmpty() {
		b.WriteString("  <style>\n")
		b.WriteString(svgStyle)
		b.WriteString("\n  </style>\n")
		writeElement(&b, s.Tree(), 1)
	}
	b.WriteString("</svg>")
	return b.String()
}

func writeElement(b *bytes.Buffer, el *Element, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	b.WriteString("<")
	b.WriteString(el.Tag)
	if el.Key != nil {
		// data-key is for display; scripts read the parts separately.
		writeAttr(b, "data-key", el.Key.String())
		if el.Key.Group != "" {
			writeAttr(b, "data-group", el.Key.Group)
		}
		writeAttr(b, "data-name", el.Key.Name)
	}
	for _, k := range sortedKeys(el.Attrs) {
		writeAttr(b, k, el.Attrs[k])
	}
	if len(el.Style) > 0 {
		writeAttr(b, "style", styleString(el.Style))
	}
	if len(el.Children) == 0 && el.Text == "" {
		b.WriteString(" />\n")
		return
	}
	b.WriteString(">")
	if el.Text != "" {
		b.WriteString(html.EscapeString(el.Text))
	}
	if len(el.Children) > 0 {
		b.WriteString("\n")
		for _, c := range el.Children {
			writeElement(b, c, depth+1)
		}
		b.WriteString(indent)
	}
	b.WriteString("</")
	b.WriteString(el.Tag)
	b.WriteString(">\n")
}

func writeAttr(b *bytes.Buffer, name, value string) {
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString("=\"")
	b.WriteString(html.EscapeString(value))
	b.WriteString("\"")
}

func styleString(style map[string]string) string {
	parts := make([]string, 0, len(style))
	for _, k := range sortedKeys(style) {
		parts = append(parts, k+": "+style[k])
	}
	return strings.Join(parts, "; ")
}

// HTML renders the tooltip as an absolutely positioned div. Content is
// inserted verbatim: it is built from escaped labels.
func (t Tooltip) HTML() string {
	visibility := "hidden"
	if t.Visible {
		visibility = "visible"
	}
	return fmt.Sprintf("<div id=\"%s\" class=\"%s\" style=\"position: absolute; left: %spx; top: %spx; visibility: %s\">%s</div>",
		html.EscapeString(t.ID), html.EscapeString(t.Class), num(t.Left), num(t.Top), visibility, t.Content)
}
