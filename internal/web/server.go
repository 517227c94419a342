package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/clickmapper/clickmapper/internal/metrics"
	"github.com/clickmapper/clickmapper/internal/reporter"
)

// StatsSource provides live launch counters
type StatsSource interface {
	Snapshot() metrics.Snapshot
}

// Options wires the server to the running overlay. Reporter and Registry
// may be nil; their routes then answer 404.
type Options struct {
	SessionID string
	Stats     StatsSource
	Reporter  *reporter.Reporter
	Registry  *prometheus.Registry
	Clock     clockwork.Clock
	Logger    *slog.Logger
}

// Server is the optional status API of a running overlay
type Server struct {
	echo      *echo.Echo
	addr      string
	logger    *slog.Logger
	clock     clockwork.Clock
	startTime time.Time
	sessionID string
	stats     StatsSource
	reporter  *reporter.Reporter
}

func NewServer(addr string, opts Options) *Server {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			opts.Logger.Debug("HTTP request", "method", v.Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))

	s := &Server{
		echo:      e,
		addr:      addr,
		logger:    opts.Logger,
		clock:     opts.Clock,
		startTime: opts.Clock.Now(),
		sessionID: opts.SessionID,
		stats:     opts.Stats,
		reporter:  opts.Reporter,
	}

	s.registerRoutes(opts.Registry)
	return s
}

// Start listens on the configured address. It returns http.ErrServerClosed
// after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting status server", "addr", s.addr)
	return s.echo.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Debug("Shutting down status server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.addr
}

// ServeHTTP lets the server be driven directly by tests
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
