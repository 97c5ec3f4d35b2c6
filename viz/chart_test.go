package viz

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPie(t *testing.T, doc *Document, opts ...Option) *PieChart {
	t.Helper()
	p, err := NewPieChart(opts...)
	require.NoError(t, err)
	require.NoError(t, p.Mount(doc))
	return p
}

func newTestHeatmap(t *testing.T, doc *Document, opts ...Option) *HeatmapChart {
	t.Helper()
	h, err := NewHeatmapChart(opts...)
	require.NoError(t, err)
	require.NoError(t, h.Mount(doc))
	return h
}

func assertNoNonFinite(t *testing.T, svg string) {
	t.Helper()
	assert.NotContains(t, svg, "NaN")
	assert.NotContains(t, svg, "Inf")
}

func TestChartLifecycle(t *testing.T) {
	doc := NewDocument()
	p, err := NewPieChart()
	require.NoError(t, err)
	assert.Equal(t, StateUnmounted, p.State())
	assert.ErrorIs(t, p.SetData(scenarioPie()), ErrNotMounted)

	require.NoError(t, p.Mount(doc))
	assert.Equal(t, StateEmpty, p.State())
	assert.Equal(t, 0, doc.TooltipCount(), "an empty chart holds no tooltip")
	require.NoError(t, p.Mount(doc), "mounting twice on the same document is a no-op")
	assert.Error(t, p.Mount(NewDocument()))

	require.NoError(t, p.SetData(scenarioPie()))
	assert.Equal(t, StateRendered, p.State())
	assert.Equal(t, 1, doc.TooltipCount())

	require.NoError(t, p.SetData(nil))
	assert.Equal(t, StateEmpty, p.State())
	assert.Equal(t, 0, doc.TooltipCount())

	require.NoError(t, p.SetData(scenarioPie()))
	p.Unmount()
	assert.Equal(t, StateUnmounted, p.State())
	assert.Equal(t, 0, doc.TooltipCount())
	assert.ErrorIs(t, p.PointerMove(Point{}), ErrNotMounted)
	_, err = p.SVG()
	assert.ErrorIs(t, err, ErrNotMounted)
	p.Unmount()
}

func TestRemountStartsEmpty(t *testing.T) {
	doc := NewDocument()
	p := newTestPie(t, doc)
	require.NoError(t, p.SetData([]PieRecord{{Label: "DoS", Value: 30}, {Label: "CSRF", Value: 70}}))
	h := newTestHeatmap(t, doc)
	require.NoError(t, h.SetData([]HeatmapRecord{{Module: "UI", Category: "XSS", Count: 3}}))
	p.Unmount()
	h.Unmount()

	require.NoError(t, p.Mount(doc))
	require.NoError(t, h.Mount(doc))
	assert.Equal(t, StateEmpty, p.State())
	assert.Equal(t, StateEmpty, h.State())
	assert.Empty(t, p.Records())
	assert.Empty(t, h.Records())
	assert.Equal(t, 0, p.ShapeCount())
	assert.Equal(t, 0, h.ShapeCount())
	assert.Equal(t, 0, doc.TooltipCount())

	require.NoError(t, p.SetData(scenarioPie()))
	assert.Equal(t, StateRendered, p.State())
}

func TestDuplicateRecordsKeepFirstPositionLastValue(t *testing.T) {
	doc := NewDocument()
	p := newTestPie(t, doc)
	require.NoError(t, p.SetData([]PieRecord{
		{Label: "DoS", Value: 10},
		{Label: "CSRF", Value: 50},
		{Label: "DoS", Value: 50},
	}))
	assert.Equal(t, []PieRecord{{Label: "DoS", Value: 50}, {Label: "CSRF", Value: 50}}, p.Records())

	wedges := p.Wedges()
	require.Len(t, wedges, 2)
	assert.InDelta(t, 0, wedges[0].StartAngle, 1e-9)
	assert.InDelta(t, math.Pi, wedges[0].EndAngle, 1e-9)
	assert.InDelta(t, math.Pi, wedges[1].StartAngle, 1e-9)
	assert.InDelta(t, 2*math.Pi, wedges[1].EndAngle, 1e-9)
	assert.Len(t, p.Keys(), 2)

	h := newTestHeatmap(t, doc)
	require.NoError(t, h.SetData([]HeatmapRecord{
		{Module: "UI", Category: "XSS", Count: 1},
		{Module: "UI", Category: "XSS", Count: 9},
	}))
	assert.Equal(t, []HeatmapRecord{{Module: "UI", Category: "XSS", Count: 9}}, h.Records())
}

func TestMountRenderUnmountCyclesLeaveNoTooltips(t *testing.T) {
	doc := NewDocument()
	for _, n := range []int{1, 2, 10, 50} {
		t.Run(fmt.Sprintf("%d cycles", n), func(t *testing.T) {
			for i := 0; i < n; i++ {
				p := newTestPie(t, doc)
				h := newTestHeatmap(t, doc)
				require.NoError(t, p.SetData(scenarioPie()))
				require.NoError(t, h.SetData([]HeatmapRecord{{Module: "Auth", Category: "SQLi", Count: 12}}))
				// re-rendering reuses the instance's tooltip
				require.NoError(t, p.SetData(scenarioPie()))
				require.NoError(t, p.PointerEnter(ShapeKey{Name: "DoS"}, Point{X: 1, Y: 1}))
				assert.Equal(t, 2, doc.TooltipCount())
				p.Unmount()
				h.Unmount()
			}
			assert.Equal(t, 0, doc.TooltipCount())
		})
	}
}

func TestConcurrentInstancesOwnTheirTooltips(t *testing.T) {
	doc := NewDocument()
	a := newTestPie(t, doc)
	b := newTestPie(t, doc)
	require.NoError(t, a.SetData(scenarioPie()))
	require.NoError(t, b.SetData(scenarioPie()))
	assert.NotEqual(t, a.TooltipID(), b.TooltipID())
	assert.Equal(t, 2, doc.TooltipCount())

	require.NoError(t, a.PointerEnter(ShapeKey{Name: "CSRF"}, Point{X: 5, Y: 5}))
	assert.True(t, a.Interaction().Tooltip.Visible)
	assert.False(t, b.Interaction().Tooltip.Visible)

	a.Unmount()
	assert.Equal(t, 1, doc.TooltipCount())
	assert.Equal(t, b.TooltipID(), doc.Tooltips()[0].ID)
}

func TestRenderingTwiceIsIdempotent(t *testing.T) {
	doc := NewDocument()
	p := newTestPie(t, doc)
	require.NoError(t, p.SetData(scenarioPie()))
	firstKeys, firstCount := p.Keys(), p.ShapeCount()
	firstSVG, err := p.SVG()
	require.NoError(t, err)

	require.NoError(t, p.SetData(scenarioPie()))
	assert.Equal(t, firstKeys, p.Keys())
	assert.Equal(t, firstCount, p.ShapeCount())
	svg, err := p.SVG()
	require.NoError(t, err)
	assert.Equal(t, firstSVG, svg)
	assert.Equal(t, 8, firstCount, "one wedge and one label per record")
}

func TestHeatmapCellCountMatchesDistinctPairs(t *testing.T) {
	records := []HeatmapRecord{
		{Module: "Auth", Category: "SQLi", Count: 12},
		{Module: "UI", Category: "XSS", Count: 9},
		{Module: "UI", Category: "CSRF", Count: 3},
		{Module: "Auth", Category: "SQLi", Count: 7},
		{Module: "Network", Category: "DoS", Count: 2},
	}
	doc := NewDocument()
	h := newTestHeatmap(t, doc)
	require.NoError(t, h.SetData(records))
	assert.Equal(t, 4, h.ShapeCount())

	reversed := make([]HeatmapRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	require.NoError(t, h.SetData(reversed))
	assert.Equal(t, 4, h.ShapeCount())
	assert.ElementsMatch(t, []ShapeKey{
		{Group: "Auth", Name: "SQLi"}, {Group: "UI", Name: "XSS"},
		{Group: "UI", Name: "CSRF"}, {Group: "Network", Name: "DoS"},
	}, h.Keys())
}

func TestSingleCellHeatmapIsMaxIntensity(t *testing.T) {
	doc := NewDocument()
	h := newTestHeatmap(t, doc)
	require.NoError(t, h.SetData([]HeatmapRecord{{Module: "Auth", Category: "SQLi", Count: 12}}))
	require.Equal(t, 1, h.ShapeCount())

	cell, ok := h.Shape(ShapeKey{Group: "Auth", Name: "SQLi"})
	require.True(t, ok)
	assert.Equal(t, OrRd[len(OrRd)-1], cell.Style["fill"])
	assert.Equal(t, "#fff", cell.Style["stroke"])
}

func TestAllZeroDatasets(t *testing.T) {
	doc := NewDocument()

	t.Run("Pie Renders Nothing", func(t *testing.T) {
		p := newTestPie(t, doc)
		defer p.Unmount()
		require.NoError(t, p.SetData([]PieRecord{{Label: "a"}, {Label: "b"}}))
		assert.Equal(t, StateEmpty, p.State())
		assert.Equal(t, 0, p.ShapeCount())
		svg, err := p.SVG()
		require.NoError(t, err)
		assertNoNonFinite(t, svg)
	})

	t.Run("Heatmap Uses Coolest Color", func(t *testing.T) {
		h := newTestHeatmap(t, doc)
		defer h.Unmount()
		require.NoError(t, h.SetData([]HeatmapRecord{
			{Module: "Prediction", Category: "a"},
			{Module: "Prediction", Category: "b"},
		}))
		assert.Equal(t, 2, h.ShapeCount())
		cell, ok := h.Shape(ShapeKey{Group: "Prediction", Name: "a"})
		require.True(t, ok)
		assert.Equal(t, OrRd[0], cell.Style["fill"])
		svg, err := h.SVG()
		require.NoError(t, err)
		assertNoNonFinite(t, svg)
	})
	assert.Equal(t, 0, doc.TooltipCount())
}

func TestPieHover(t *testing.T) {
	doc := NewDocument()
	p := newTestPie(t, doc)
	require.NoError(t, p.SetData(scenarioPie()))
	dos := ShapeKey{Name: "DoS"}

	wedge, _ := p.Shape(dos)
	assert.Equal(t, "0.8", wedge.Style["opacity"])

	require.NoError(t, p.PointerEnter(dos, Point{X: 100, Y: 100}))
	st := p.Interaction()
	require.NotNil(t, st.Hovered)
	assert.Equal(t, dos, *st.Hovered)
	assert.True(t, st.Tooltip.Visible)
	assert.Equal(t, "<strong>DoS</strong>: 30", st.Tooltip.Content)
	assert.Equal(t, 110.0, st.Tooltip.Left)
	assert.Equal(t, 80.0, st.Tooltip.Top)
	wedge, _ = p.Shape(dos)
	assert.Equal(t, "1", wedge.Style["opacity"])

	t.Run("Move Tracks Pointer Without Changing Content", func(t *testing.T) {
		require.NoError(t, p.PointerMove(Point{X: 150, Y: 100}))
		moved := p.Interaction().Tooltip
		assert.Equal(t, st.Tooltip.Left+50, moved.Left)
		assert.Equal(t, st.Tooltip.Top, moved.Top)
		assert.Equal(t, st.Tooltip.Content, moved.Content)
	})

	t.Run("Repeated Enter Is Idempotent", func(t *testing.T) {
		require.NoError(t, p.PointerEnter(dos, Point{X: 150, Y: 100}))
		require.NoError(t, p.PointerEnter(dos, Point{X: 150, Y: 100}))
		again := p.Interaction()
		assert.Equal(t, dos, *again.Hovered)
		assert.Equal(t, 160.0, again.Tooltip.Left)
		assert.Equal(t, 1, doc.TooltipCount())
	})

	t.Run("Entering Another Shape Reverts The First", func(t *testing.T) {
		require.NoError(t, p.PointerEnter(ShapeKey{Name: "SQLi"}, Point{X: 1, Y: 1}))
		first, _ := p.Shape(dos)
		second, _ := p.Shape(ShapeKey{Name: "SQLi"})
		assert.Equal(t, "0.8", first.Style["opacity"])
		assert.Equal(t, "1", second.Style["opacity"])
	})

	t.Run("Leave Hides And Reverts", func(t *testing.T) {
		require.NoError(t, p.PointerLeave())
		st := p.Interaction()
		assert.Nil(t, st.Hovered)
		assert.False(t, st.Tooltip.Visible)
		second, _ := p.Shape(ShapeKey{Name: "SQLi"})
		assert.Equal(t, "0.8", second.Style["opacity"])

		require.NoError(t, p.PointerLeave(), "leave without hover is a no-op")
		require.NoError(t, p.PointerMove(Point{X: 9, Y: 9}), "move without hover is a no-op")
		assert.False(t, p.Interaction().Tooltip.Visible)
	})

	t.Run("Unknown Key", func(t *testing.T) {
		err := p.PointerEnter(ShapeKey{Name: "nope"}, Point{})
		assert.ErrorIs(t, err, ErrUnknownShape)
	})

	t.Run("Rebuild Resets Interaction", func(t *testing.T) {
		require.NoError(t, p.PointerEnter(dos, Point{X: 1, Y: 1}))
		require.NoError(t, p.SetData(scenarioPie()))
		st := p.Interaction()
		assert.Nil(t, st.Hovered)
		assert.False(t, st.Tooltip.Visible)
		assert.Empty(t, st.Tooltip.Content)
	})
}

func TestHeatmapHover(t *testing.T) {
	doc := NewDocument()
	h := newTestHeatmap(t, doc)
	require.NoError(t, h.SetData([]HeatmapRecord{
		{Module: "UI", Category: "<script>", Count: 9},
		{Module: "UI", Category: "CSRF", Count: 3},
	}))
	key := ShapeKey{Group: "UI", Name: "<script>"}

	require.NoError(t, h.PointerEnter(key, Point{X: 20, Y: 30}))
	st := h.Interaction()
	assert.Equal(t, "<b>UI</b><br>&lt;script&gt;<br>Count: 9", st.Tooltip.Content)
	assert.Equal(t, 30.0, st.Tooltip.Left)
	assert.Equal(t, 20.0, st.Tooltip.Top)
	cell, _ := h.Shape(key)
	assert.Equal(t, "#000", cell.Style["stroke"])
	assert.Equal(t, "2px", cell.Style["stroke-width"])

	require.NoError(t, h.PointerLeave())
	cell, _ = h.Shape(key)
	assert.Equal(t, "#fff", cell.Style["stroke"])
	assert.Equal(t, "1px", cell.Style["stroke-width"])
}

func TestSVGOutput(t *testing.T) {
	doc := NewDocument()

	t.Run("Pie", func(t *testing.T) {
		p := newTestPie(t, doc, WithSize(350, 350))
		defer p.Unmount()
		require.NoError(t, p.SetData(scenarioPie()))
		svg, err := p.SVG()
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(svg, `<svg width="350" height="350"`))
		assert.Contains(t, svg, `transform="translate(175,175)"`)
		assert.Equal(t, 4, strings.Count(svg, "<path "))
		assert.Contains(t, svg, ">CSRF</text>")
		assert.Contains(t, svg, `fill="#1f77b4"`)
		assertNoNonFinite(t, svg)
	})

	t.Run("Heatmap", func(t *testing.T) {
		h := newTestHeatmap(t, doc)
		defer h.Unmount()
		require.NoError(t, h.SetData([]HeatmapRecord{{Module: "Prediction", Category: "SQL Injection", Count: 62}}))
		svg, err := h.SVG()
		require.NoError(t, err)
		assert.Contains(t, svg, `transform="translate(120,40)"`)
		assert.Contains(t, svg, `id="legend-gradient-`+h.ID()+`"`)
		assert.Contains(t, svg, "rotate(-45)")
		assert.Contains(t, svg, ">SQL Injection</text>")
		assert.Equal(t, 1, strings.Count(svg, `class="cell"`))
		assertNoNonFinite(t, svg)
	})

	t.Run("Empty", func(t *testing.T) {
		p := newTestPie(t, doc)
		defer p.Unmount()
		svg, err := p.SVG()
		require.NoError(t, err)
		assert.Equal(t, "<svg width=\"300\" height=\"300\" xmlns=\"http://www.w3.org/2000/svg\">\n</svg>", svg)
	})
}

func TestResizeRebuilds(t *testing.T) {
	doc := NewDocument()
	p := newTestPie(t, doc)
	require.NoError(t, p.SetData(scenarioPie()))
	p.Resize(200, 100)
	wedges := p.Wedges()
	require.Len(t, wedges, 4)
	assert.Equal(t, 50.0, wedges[0].OuterRadius)
	assert.False(t, math.IsNaN(wedges[0].Centroid().X))
}

func TestChartIDGeneratorError(t *testing.T) {
	_, err := NewPieChart(WithIDGenerator(func() (string, error) { return "", fmt.Errorf("boom") }))
	assert.Error(t, err)
}
