package videoserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/anatolykoptev/go_ytextract/internal/engine"
	"github.com/anatolykoptev/go_ytextract/internal/extract"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// extractRequest is the body of POST /api/extract.
type extractRequest struct {
	URL string `json:"url"`
}

// NewEcho builds the REST API: POST /api/extract, GET /health, GET /metrics.
func (s *Server) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = jsonErrorHandler

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(ctx, "request completed",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.Int64("latency_ms", v.Latency.Milliseconds()))
			} else {
				slog.ErrorContext(ctx, "request failed",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.Int64("latency_ms", v.Latency.Milliseconds()),
					slog.Any("error", v.Error))
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	e.POST("/api/extract", s.handleExtract)
	e.GET("/health", handleHealth)
	e.GET("/metrics", handleMetrics)
	return e
}

func (s *Server) handleExtract(c echo.Context) error {
	var req extractRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
	}
	res, err := s.Pipeline.Extract(c.Request().Context(), req.URL)
	if err != nil {
		var verr *extract.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid YouTube URL"})
		}
		slog.Error("extract failed", slog.String("url", req.URL), slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Extraction failed: " + err.Error()})
	}
	return c.JSON(http.StatusOK, res)
}

// jsonErrorHandler renders echo and recovered errors as {"error": ...}.
func jsonErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}
	if werr := c.JSON(code, map[string]string{"error": msg}); werr != nil {
		slog.Error("write error response", slog.Any("error", werr))
	}
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func handleMetrics(c echo.Context) error {
	return c.String(http.StatusOK, engine.FormatMetrics())
}
