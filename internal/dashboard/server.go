// Package dashboard serves an interactive view of a loaded metadata file:
// overview, charts, a word cloud and a year-range filter.
package dashboard

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/metascope/internal/aggregate"
	"github.com/KaramelBytes/metascope/internal/analysis"
	"github.com/KaramelBytes/metascope/internal/explore"
)

//go:embed templates/index.html
var templateFS embed.FS

// Options controls what the dashboard shows.
type Options struct {
	explore.Options
	// DefaultRange is the initial year selection, clamped to the data.
	DefaultRange aggregate.YearRange
	SampleRows   int
}

// DefaultOptions returns the dashboard defaults.
func DefaultOptions() Options {
	return Options{Options: explore.DefaultOptions(), DefaultRange: aggregate.DefaultRange, SampleRows: 5}
}

// Server renders a single immutable dataset. The full-collection views are
// computed once; only the year selection is recomputed per request.
type Server struct {
	ds       *explore.Dataset
	opt      Options
	log      *zap.Logger
	mux      *http.ServeMux
	m        *metrics
	page     *template.Template
	profile  *analysis.Profile
	views    explore.Views
	bounds   aggregate.YearRange
	hasYears bool
}

// New prepares a dashboard for ds.
func New(ds *explore.Dataset, opt Options, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opt.WordField == "" {
		opt.WordField = aggregate.FieldTitle
	}
	page, err := template.New("index.html").Funcs(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"pct": func(part, total int) string {
			if total == 0 {
				return "0.0"
			}
			return strconv.FormatFloat(100*float64(part)/float64(total), 'f', 1, 64)
		},
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}
	s := &Server{
		ds:      ds,
		opt:     opt,
		log:     logger,
		mux:     http.NewServeMux(),
		m:       newMetrics(),
		page:    page,
		profile: analysis.ProfileTable(ds.Table),
		views:   explore.Aggregate(ds.Cleaned, opt.Options),
	}
	s.bounds, s.hasYears = ds.Bounds()
	s.m.records.WithLabelValues("loaded").Set(float64(len(ds.Records)))
	s.m.records.WithLabelValues("cleaned").Set(float64(len(ds.Cleaned)))
	s.m.records.WithLabelValues("missing_year").Set(float64(ds.MissingYear()))
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.instrument("index", s.handleIndex))
	s.mux.HandleFunc("GET /api/summary", s.instrument("summary", s.handleSummary))
	s.mux.HandleFunc("GET /api/years", s.instrument("years", s.handleYears))
	s.mux.HandleFunc("GET /api/journals", s.instrument("journals", s.handleJournals))
	s.mux.HandleFunc("GET /api/words", s.instrument("words", s.handleWords))
	s.mux.HandleFunc("GET /api/sources", s.instrument("sources", s.handleSources))
	s.mux.HandleFunc("GET /api/filter", s.instrument("filter", s.handleFilter))
	s.mux.HandleFunc("GET /charts/{file}", s.instrument("chart", s.handleChart))
	s.mux.HandleFunc("GET /healthz", s.instrument("healthz", s.handleHealth))
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.m.registry, promhttp.HandlerOpts{}))
}

// Handler exposes the routed mux.
func (s *Server) Handler() http.Handler { return s.mux }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("dashboard listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("dashboard shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		elapsed := time.Since(start)
		s.m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.m.latency.WithLabelValues(route).Observe(elapsed.Seconds())
		s.log.Debug("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed))
	}
}

// selection resolves the lo/hi query parameters. Missing parameters fall back
// to the default range; given values are clamped to the observed years.
func (s *Server) selection(r *http.Request) (*analysis.SelectionSummary, error) {
	if !s.hasYears {
		return &analysis.SelectionSummary{}, nil
	}
	rng := aggregate.ClampRange(s.bounds, s.opt.DefaultRange)
	q := r.URL.Query()
	for _, p := range []struct {
		key string
		dst *int
	}{{"lo", &rng.Lo}, {"hi", &rng.Hi}} {
		raw := strings.TrimSpace(q.Get(p.key))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q is not a year", p.key, raw)
		}
		*p.dst = v
	}
	rng = aggregate.ClampRange(s.bounds, rng)
	s.m.selections.Inc()
	return analysis.Summarize(s.ds.Select(rng), s.opt.SampleRows), nil
}

type summaryResponse struct {
	File        string                   `json:"file"`
	Rows        int                      `json:"rows"`
	Columns     []analysis.ColumnSummary `json:"columns"`
	Cleaned     int                      `json:"cleaned"`
	Dropped     int                      `json:"dropped"`
	MissingYear int                      `json:"missing_year"`
	Bounds      *aggregate.YearRange     `json:"year_bounds,omitempty"`
	WordField   aggregate.Field          `json:"word_field"`
}

func (s *Server) summary() summaryResponse {
	out := summaryResponse{
		File:        s.profile.Name,
		Rows:        s.profile.Rows,
		Columns:     s.profile.Cols,
		Cleaned:     len(s.ds.Cleaned),
		Dropped:     s.ds.Dropped(),
		MissingYear: s.ds.MissingYear(),
		WordField:   s.opt.WordField,
	}
	if s.hasYears {
		b := s.bounds
		out.Bounds = &b
	}
	return out
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.summary())
}

func (s *Server) handleYears(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.views.Years)
}

func (s *Server) handleJournals(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.views.Journals)
}

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.views.Words)
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.views.Sources)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	sel, err := s.selection(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sel)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "records": len(s.ds.Cleaned)})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".svg")
	if !ok {
		http.NotFound(w, r)
		return
	}
	var svg string
	switch name {
	case "years":
		svg = s.yearsChart().SVG()
	case "journals":
		svg = s.journalsChart().SVG()
	case "sources":
		svg = s.sourcesChart().SVG()
	case "words":
		svg = WordCloud(s.views.Words, 800, 400)
	case "selection":
		sel, err := s.selection(r)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		svg = selectionChart(sel).SVG()
	default:
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write([]byte(svg))
}

func (s *Server) yearsChart() Chart {
	return Chart{Title: "Publications by Year", XLabel: "Year", YLabel: "Number of Papers", Bars: YearBars(s.views.Years)}
}

func (s *Server) journalsChart() Chart {
	return Chart{
		Title:      fmt.Sprintf("Top %d Journals by Publication Count", len(s.views.Journals)),
		XLabel:     "Number of Papers",
		YLabel:     "Journal",
		Bars:       CountBars(s.views.Journals),
		Horizontal: true,
	}
}

func (s *Server) sourcesChart() Chart {
	return Chart{
		Title:      "Papers by Source",
		XLabel:     "Number of Papers",
		YLabel:     "Source",
		Bars:       CountBars(s.views.Sources),
		Horizontal: true,
	}
}

func selectionChart(sel *analysis.SelectionSummary) Chart {
	return Chart{
		Title:  fmt.Sprintf("Publications %d-%d", sel.Range.Lo, sel.Range.Hi),
		XLabel: "Year",
		YLabel: "Number of Papers",
		Bars:   YearBars(sel.Years),
	}
}

type pageData struct {
	Summary   summaryResponse
	Selection *analysis.SelectionSummary
	Error     string
	Years     template.HTML
	Journals  template.HTML
	Sources   template.HTML
	Words     template.HTML
	Selected  template.HTML
	WordLabel string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Summary:   s.summary(),
		WordLabel: string(s.opt.WordField),
		// Chart markup is generated here with every label escaped.
		Years:    template.HTML(s.yearsChart().SVG()),
		Journals: template.HTML(s.journalsChart().SVG()),
		Sources:  template.HTML(s.sourcesChart().SVG()),
		Words:    template.HTML(WordCloud(s.views.Words, 800, 400)),
	}
	status := http.StatusOK
	sel, err := s.selection(r)
	if err != nil {
		status = http.StatusBadRequest
		data.Error = err.Error()
	} else if s.hasYears {
		data.Selection = sel
		data.Selected = template.HTML(selectionChart(sel).SVG())
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		s.log.Error("render dashboard", zap.Error(err))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
