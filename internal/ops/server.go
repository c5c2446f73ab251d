// Package ops exposes the operational HTTP surface: health, scheduler status
// and Prometheus metrics.
package ops

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/scheduler"
)

// StatusSource reports the scheduler's current state.
type StatusSource interface {
	Status() (state string, last scheduler.CycleStats)
}

// Server serves the operational endpoints.
type Server struct {
	echo *echo.Echo
	addr string
	log  zerolog.Logger
}

type statusResponse struct {
	State     string               `json:"state"`
	LastCycle scheduler.CycleStats `json:"last_cycle"`
}

// NewServer wires the ops routes.
func NewServer(addr string, src StatusSource, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/status", func(c echo.Context) error {
		state, last := src.Status()
		return c.JSON(http.StatusOK, statusResponse{State: state, LastCycle: last})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{
		echo: e,
		addr: addr,
		log:  log.With().Str("component", "ops").Logger(),
	}
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.log.Info().Str("addr", s.addr).Msg("ops server listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("ops server failed")
		}
	}()
}

// Stop shuts the server down, waiting up to five seconds for in-flight
// requests.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(ctx)
}
