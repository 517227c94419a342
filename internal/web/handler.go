package web

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/clickmapper/clickmapper/internal/metrics"
	"github.com/clickmapper/clickmapper/internal/reporter"
)

func (s *Server) registerRoutes(reg *prometheus.Registry) {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/api/status", s.handleStatus)
	s.echo.GET("/api/report", s.handleReport)

	if reg != nil {
		s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(reg)))
	}
}

func (s *Server) uptime() float64 {
	return s.clock.Since(s.startTime).Seconds()
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": s.uptime(),
	})
}

type statusResponse struct {
	SessionID string  `json:"session_id,omitempty"`
	Uptime    float64 `json:"uptime"`
	metrics.Snapshot
}

func (s *Server) handleStatus(c echo.Context) error {
	resp := statusResponse{SessionID: s.sessionID, Uptime: s.uptime()}
	if s.stats != nil {
		resp.Snapshot = s.stats.Snapshot()
	}
	return c.JSON(http.StatusOK, resp)
}

// handleReport serves the journal report. ?period= defaults to day and
// ?format=text returns the plain text rendering.
func (s *Server) handleReport(c echo.Context) error {
	if s.reporter == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "journal is disabled"})
	}

	periodType := c.QueryParam("period")
	if periodType == "" {
		periodType = "day"
	}

	report, err := s.reporter.GenerateReport(periodType)
	if err != nil {
		if errors.Is(err, reporter.ErrInvalidPeriod) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		s.logger.Error("Failed to generate report", "period", periodType, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate report"})
	}

	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, s.reporter.FormatReportText(report))
	}
	return c.JSON(http.StatusOK, report)
}
