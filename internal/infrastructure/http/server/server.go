// Package server contains the fasthttp server used for metrics, health and login code input
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Server represents fasthttp server
type Server struct {
	server *fasthttp.Server
	Router *router.Router
	addr   string
	logger zerolog.Logger
}

// NewServer creates a new fasthttp server
func NewServer(name, port string, logger zerolog.Logger) *Server {
	r := router.New()

	srv := &fasthttp.Server{
		Handler:      r.Handler,
		Name:         name,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server: srv,
		Router: r,
		addr:   fmt.Sprintf(":%s", port),
		logger: logger,
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.addr
}

// RegisterMetrics registers Prometheus metrics endpoint
func (s *Server) RegisterMetrics() {
	// Adapt promhttp.Handler to fasthttp
	prometheusHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s.Router.GET("/metrics", prometheusHandler)
}

// ConnectionChecker reports whether the media client is connected
type ConnectionChecker interface {
	IsConnected() bool
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Client    string    `json:"client"`
}

// RegisterHealth registers the health endpoint. The service is healthy while it
// runs; a disconnected media client only degrades it.
func (s *Server) RegisterHealth(checker ConnectionChecker) {
	s.Router.GET("/health", func(ctx *fasthttp.RequestCtx) {
		resp := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Client:    "connected",
		}
		if !checker.IsConnected() {
			resp.Status = "degraded"
			resp.Client = "disconnected"
		}

		body, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to encode health check response")
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			return
		}

		ctx.SetContentType("application/json")
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBody(body)
	})
}

// CodeReceiver accepts a login code submitted through the form
type CodeReceiver func(code string) error

const codeForm = `<!DOCTYPE html>
<html><body>
<form method="post" action="/code">
<input name="code" autocomplete="one-time-code" autofocus>
<button type="submit">Send</button>
</form>
</body></html>`

// RegisterCodeInput registers the login code form on /code
func (s *Server) RegisterCodeInput(receive CodeReceiver) {
	s.Router.GET("/code", func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("text/html; charset=utf-8")
		ctx.SetBodyString(codeForm)
	})

	s.Router.POST("/code", func(ctx *fasthttp.RequestCtx) {
		code := string(ctx.FormValue("code"))
		if code == "" {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			return
		}

		if err := receive(code); err != nil {
			s.logger.Warn().Err(err).Msg("Rejected login code")
			ctx.SetStatusCode(fasthttp.StatusConflict)
			return
		}

		ctx.SetStatusCode(fasthttp.StatusOK)
	})
}

// Start starts the HTTP server in a separate goroutine
func (s *Server) Start() error {
	ln, err := net.Listen("tcp4", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.logger.Info().
		Str("addr", s.addr).
		Msg("Starting HTTP server")

	go func() {
		if err := s.server.Serve(ln); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server")

	if err := s.server.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped gracefully")
	return nil
}
