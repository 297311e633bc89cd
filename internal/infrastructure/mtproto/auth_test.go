package mtproto

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestConsoleCodeProvider(t *testing.T) {
	var out bytes.Buffer
	provider := &ConsoleCodeProvider{In: strings.NewReader(" 12345 \n"), Out: &out}

	var hints []string
	code, err := provider.GetCode(context.Background(), func(hint string) { hints = append(hints, hint) })

	require.NoError(t, err)
	require.Equal(t, "12345", code)
	require.Equal(t, []string{cliCodeHint}, hints)
	require.Contains(t, out.String(), "Enter authentication code")
}

func TestConsoleCodeProviderCancelled(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &ConsoleCodeProvider{In: reader, Out: io.Discard}
	_, err := provider.GetCode(ctx, func(string) {})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWebCodeProviderURL(t *testing.T) {
	local := NewWebCodeProvider("8085", "", zerolog.Nop())
	require.Equal(t, "http://localhost:8085/code", local.publicURL)

	public := NewWebCodeProvider("8085", "https://pi.example.org/", zerolog.Nop())
	require.Equal(t, "https://pi.example.org/code", public.publicURL)
}
