package web

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/panyam/vulnviz/console"
	"github.com/panyam/vulnviz/prediction"
	"github.com/panyam/vulnviz/viz"
)

// indexData is the data behind templates/index.html.
type indexData struct {
	Title      string
	Banner     string
	Result     *prediction.Result
	PieSVG     string
	HeatmapSVG string
	Tooltips   []viz.Tooltip
}

func (a *App) IndexPage(w http.ResponseWriter, r *http.Request) {
	page := indexData{Title: "Software Vulnerability Detector"}
	if c, ok := a.existingCanvas(r); ok {
		page.Banner = c.Banner()
		page.Result = c.Result()
		page.PieSVG, _ = c.SVG(console.ChartPie)
		page.HeatmapSVG, _ = c.SVG(console.ChartHeatmap)
		page.Tooltips = c.Document().Tooltips()
	}

	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, "index.html", page); err != nil {
		a.log.Error("rendering index", "err", err)
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// FormSubmit handles the page's forms without JavaScript: the snippet form
// and the upload form both post here, then the browser is sent back to /.
func (a *App) FormSubmit(w http.ResponseWriter, r *http.Request) {
	c, err := a.canvasFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var submitErr error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") && r.FormValue("mode") != "snippet" {
		files, content, err := readUpload(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		submitErr = c.Upload(r.Context(), files, content)
	} else {
		submitErr = c.Predict(r.Context(), r.FormValue("code_snippet"))
	}
	if submitErr != nil && !errors.Is(submitErr, console.ErrCanvasClosed) {
		a.log.Debug("form submission failed", "canvas", c.ID(), "err", submitErr)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
