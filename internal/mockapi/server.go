// Package mockapi is a demo backend for the search endpoint. It answers every query
// from a small canned corpus so the terminal client can run without a real service.
package mockapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"searchdeck/internal/domain"
)

// resultNamespace seeds the deterministic result ids
var resultNamespace = uuid.MustParse("6f1c3a52-8d0e-4b7a-9c41-2e5d7f0a9b13")

// FailPrefix makes the backend answer 502 for queries starting with it
const FailPrefix = "fail:"

// Options configures the demo backend
type Options struct {
	Latency time.Duration // added to every search
}

// Server routes the demo endpoints
type Server struct {
	engine   *gin.Engine
	opts     Options
	log      zerolog.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

type searchParams struct {
	Q    string `form:"q" binding:"required"`
	Type string `form:"type"`
	Time string `form:"time"`
	Safe string `form:"safe"`
	Mode string `form:"mode"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New builds the router
func New(opts Options, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	s := &Server{
		engine:   gin.New(),
		opts:     opts,
		log:      log.With().Str("component", "mockapi").Logger(),
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchdeck_api",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "searchdeck_api",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path"}),
	}

	s.engine.Use(gin.Recovery(), s.observe())
	s.engine.GET("/api/health", s.health)
	s.engine.GET("/api/search", s.search)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	return s
}

// Handler returns the http.Handler serving the routes
func (s *Server) Handler() http.Handler {
	return s.engine
}

// observe records request metrics and logs each request
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		method := c.Request.Method

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		elapsed := time.Since(start)
		s.requests.WithLabelValues(method, path, status).Inc()
		s.latency.WithLabelValues(method, path).Observe(elapsed.Seconds())
		s.log.Debug().
			Str("method", method).
			Str("path", path).
			Str("status", status).
			Dur("elapsed", elapsed).
			Msg("request")
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) search(c *gin.Context) {
	start := time.Now()

	var params searchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "q is required"})
		return
	}
	q := strings.TrimSpace(params.Q)
	if q == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "q is required"})
		return
	}

	if s.opts.Latency > 0 {
		select {
		case <-time.After(s.opts.Latency):
		case <-c.Request.Context().Done():
			return
		}
	}

	if strings.HasPrefix(q, FailPrefix) {
		c.JSON(http.StatusBadGateway, errorResponse{Error: "upstream unavailable"})
		return
	}

	filters := domain.FiltersState{
		Type: domain.ResultType(params.Type),
		Time: domain.TimeRange(params.Time),
		Safe: params.Safe != "0",
	}
	mode := domain.ParseMode(params.Mode)

	c.JSON(http.StatusOK, domain.SearchResponse{
		Results: Results(q, filters, mode),
		TookMs:  time.Since(start).Milliseconds(),
	})
}

// Results builds the canned response for a query. Result ids are stable for the same
// query, so repeated searches return identical data.
func Results(q string, filters domain.FiltersState, mode domain.Mode) []domain.SearchResult {
	out := []domain.SearchResult{}
	for _, doc := range corpus {
		if filters.Type != "" && filters.Type != domain.TypeAll && filters.Type != doc.kind {
			continue
		}
		signals := append([]string{string(doc.kind)}, doc.tags...)
		if mode != domain.ModeAuto {
			signals = append(signals, string(mode))
		}
		if filters.Time != "" && filters.Time != domain.TimeAny {
			signals = append(signals, "within:"+string(filters.Time))
		}
		out = append(out, domain.SearchResult{
			ID:      uuid.NewSHA1(resultNamespace, []byte(q+"\x00"+doc.slug)).String(),
			Title:   doc.title,
			Snippet: fmt.Sprintf("%s Matched for %q.", doc.snippet, q),
			URL:     doc.url,
			Signals: signals,
			Score:   doc.score,
		})
	}
	return out
}
