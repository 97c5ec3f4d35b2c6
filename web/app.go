// Package web serves the vulnerability dashboard: an HTML page, a JSON API
// for predictions and pointer events, chart SVGs and metrics.
package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"

	"github.com/panyam/vulnviz/console"
	"github.com/panyam/vulnviz/metrics"
	"github.com/panyam/vulnviz/prediction"
)

const sessionCanvasKey = "canvas_id"

//go:embed templates/*.html
var templateFS embed.FS

// Options configures an App.
type Options struct {
	// SessionLifetime bounds how long the canvas cookie is honored.
	SessionLifetime time.Duration
	// CookieSecure marks the session cookie Secure.
	CookieSecure bool
	Logger       *slog.Logger
}

// App wires the canvas registry to HTTP.
type App struct {
	Session  *scs.SessionManager
	Registry *console.Registry
	Metrics  *metrics.Metrics

	log       *slog.Logger
	templates *template.Template
}

// NewApp creates the web application. m may be nil, in which case
// /metrics is not served.
func NewApp(registry *console.Registry, m *metrics.Metrics, opts Options) (*App, error) {
	session := scs.New()
	session.Cookie.Name = "vulnviz_session"
	session.Cookie.HttpOnly = true
	session.Cookie.SameSite = http.SameSiteLaxMode
	session.Cookie.Secure = opts.CookieSecure
	if opts.SessionLifetime > 0 {
		session.Lifetime = opts.SessionLifetime
		session.IdleTimeout = opts.SessionLifetime
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templates, err := template.New("").Funcs(template.FuncMap{
		"Percent": prediction.Percent,
		"SVG":     func(s string) template.HTML { return template.HTML(s) },
		"HTML":    func(s string) template.HTML { return template.HTML(s) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &App{
		Session:   session,
		Registry:  registry,
		Metrics:   m,
		log:       logger,
		templates: templates,
	}, nil
}

// Handler returns the router with session and logging middleware.
func (a *App) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", a.IndexPage).Methods(http.MethodGet)
	r.HandleFunc("/", a.FormSubmit).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/predict", a.Predict).Methods(http.MethodPost)
	api.HandleFunc("/upload", a.Upload).Methods(http.MethodPost)
	api.HandleFunc("/charts/{chart:[a-z]+}.svg", a.ChartSVG).Methods(http.MethodGet)
	api.HandleFunc("/charts/{chart:[a-z]+}/pointer", a.Pointer).Methods(http.MethodPost)
	api.HandleFunc("/canvas", a.CloseCanvas).Methods(http.MethodDelete)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if a.Metrics != nil {
		r.Handle("/metrics", a.Metrics.Handler()).Methods(http.MethodGet)
	}

	return LogRequests(a.log, a.Session.LoadAndSave(r))
}

// canvasFor returns the session's canvas, creating one (and remembering its
// id in the session) when the session has none or its canvas was reaped.
func (a *App) canvasFor(r *http.Request) (*console.Canvas, error) {
	id := a.Session.GetString(r.Context(), sessionCanvasKey)
	c, err := a.Registry.GetOrCreate(id)
	if err != nil {
		return nil, err
	}
	if c.ID() != id {
		a.Session.Put(r.Context(), sessionCanvasKey, c.ID())
	}
	return c, nil
}

// existingCanvas returns the session's canvas without creating one.
func (a *App) existingCanvas(r *http.Request) (*console.Canvas, bool) {
	id := a.Session.GetString(r.Context(), sessionCanvasKey)
	if id == "" {
		return nil, false
	}
	return a.Registry.Get(id)
}
