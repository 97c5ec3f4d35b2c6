package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/panyam/vulnviz/console"
	"github.com/panyam/vulnviz/prediction"
	"github.com/panyam/vulnviz/upload"
	"github.com/panyam/vulnviz/viz"
)

// maxUploadBody bounds a whole multipart request. Files between MaxSize
// and this still reach the validator so the user sees their size.
const maxUploadBody = 4*upload.MaxSize + 1<<20

// PredictRequest is the body of POST /api/predict.
type PredictRequest struct {
	CodeSnippet string `json:"code_snippet"`
}

// PredictResponse is returned by the predict and upload endpoints, also on
// failure, so the page can always show the banner.
type PredictResponse struct {
	Result *prediction.Result `json:"result"`
	Banner string             `json:"banner,omitempty"`
}

// PointerRequest is the body of POST /api/charts/{chart}/pointer.
type PointerRequest struct {
	Event string  `json:"event"`
	Group string  `json:"group,omitempty"`
	Name  string  `json:"name,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// ShapeStyle is the inline style of one data-bound shape after a pointer
// event, so the page can show hover emphasis without refetching the SVG.
type ShapeStyle struct {
	Group string            `json:"group,omitempty"`
	Name  string            `json:"name"`
	Style map[string]string `json:"style"`
}

// PointerResponse is the chart's interaction state plus the current style
// of each of its shapes.
type PointerResponse struct {
	viz.InteractionState
	Shapes []ShapeStyle `json:"shapes"`
}

func shapeStyles(chart viz.Chart) []ShapeStyle {
	keys := chart.Keys()
	out := make([]ShapeStyle, 0, len(keys))
	for _, k := range keys {
		if el, ok := chart.Shape(k); ok {
			out = append(out, ShapeStyle{Group: k.Group, Name: k.Name, Style: el.Style})
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var uerr *upload.Error
	var apiErr *prediction.APIError
	switch {
	case errors.Is(err, prediction.ErrEmptySnippet),
		errors.Is(err, console.ErrUnknownEvent),
		errors.Is(err, prediction.ErrDuplicateCategory),
		errors.As(err, &uerr):
		return http.StatusBadRequest
	case errors.Is(err, console.ErrUnknownChart),
		errors.Is(err, viz.ErrUnknownShape):
		return http.StatusNotFound
	case errors.Is(err, console.ErrCanvasClosed),
		errors.Is(err, viz.ErrNotMounted):
		return http.StatusConflict
	case errors.As(err, &apiErr),
		errors.Is(err, console.ErrNoPredictor):
		return http.StatusBadGateway
	}
	return http.StatusBadGateway
}

func (a *App) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, err := a.canvasFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	status := http.StatusOK
	if err := c.Predict(r.Context(), req.CodeSnippet); err != nil {
		status = statusFor(err)
	}
	writeJSON(w, status, PredictResponse{Result: c.Result(), Banner: c.Banner()})
}

func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	c, err := a.canvasFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	files, content, err := readUpload(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status := http.StatusOK
	if err := c.Upload(r.Context(), files, content); err != nil {
		status = statusFor(err)
	}
	writeJSON(w, status, PredictResponse{Result: c.Result(), Banner: c.Banner()})
}

// readUpload parses the multipart "file" field. The content of the first
// file is only read when it is the sole one and within the size limit.
func readUpload(w http.ResponseWriter, r *http.Request) ([]upload.File, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, "", fmt.Errorf("reading upload: %w", err)
	}
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["file"]
	}
	files := make([]upload.File, len(headers))
	for i, fh := range headers {
		files[i] = upload.File{Name: fh.Filename, Size: fh.Size}
	}
	if len(headers) != 1 || headers[0].Size > upload.MaxSize {
		return files, "", nil
	}
	f, err := headers[0].Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, upload.MaxSize))
	if err != nil {
		return nil, "", err
	}
	return files, string(data), nil
}

func (a *App) ChartSVG(w http.ResponseWriter, r *http.Request) {
	c, err := a.canvasFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	svg, err := c.SVG(mux.Vars(r)["chart"])
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.Write([]byte(svg))
}

func (a *App) Pointer(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c, err := a.canvasFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	kind := mux.Vars(r)["chart"]
	state, err := c.Pointer(kind, req.Event,
		viz.ShapeKey{Group: req.Group, Name: req.Name}, viz.Point{X: req.X, Y: req.Y})
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	chart, err := c.Chart(kind)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, PointerResponse{InteractionState: state, Shapes: shapeStyles(chart)})
}

// CloseCanvas drops the session's canvas and its tooltips.
func (a *App) CloseCanvas(w http.ResponseWriter, r *http.Request) {
	id := a.Session.PopString(r.Context(), sessionCanvasKey)
	if id != "" {
		a.Registry.Remove(id)
	}
	w.WriteHeader(http.StatusNoContent)
}
