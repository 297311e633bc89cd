package server

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type staticChecker bool

func (c staticChecker) IsConnected() bool { return bool(c) }

func serve(t *testing.T, s *Server, method, uri, body string) *fasthttp.RequestCtx {
	t.Helper()

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.Header.SetContentType("application/x-www-form-urlencoded")
		ctx.Request.SetBodyString(body)
	}
	s.Router.Handler(&ctx)
	return &ctx
}

func TestHealthReportsClientState(t *testing.T) {
	for _, tt := range []struct {
		connected bool
		status    string
		client    string
	}{
		{true, "healthy", "connected"},
		{false, "degraded", "disconnected"},
	} {
		s := NewServer("pibot", "0", zerolog.Nop())
		s.RegisterHealth(staticChecker(tt.connected))

		ctx := serve(t, s, fasthttp.MethodGet, "/health", "")
		require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		require.Equal(t, tt.status, resp.Status)
		require.Equal(t, tt.client, resp.Client)
	}
}

func TestCodeInput(t *testing.T) {
	s := NewServer("pibot", "0", zerolog.Nop())

	var got []string
	s.RegisterCodeInput(func(code string) error {
		if len(got) > 0 {
			return errors.New("code already received")
		}
		got = append(got, code)
		return nil
	})

	ctx := serve(t, s, fasthttp.MethodGet, "/code", "")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.Contains(t, string(ctx.Response.Body()), `name="code"`)

	ctx = serve(t, s, fasthttp.MethodPost, "/code", "code=")
	require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = serve(t, s, fasthttp.MethodPost, "/code", "code=12345")
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	require.Equal(t, []string{"12345"}, got)

	ctx = serve(t, s, fasthttp.MethodPost, "/code", "code=54321")
	require.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())
}
