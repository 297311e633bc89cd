package business

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
	mediaerrors "github.com/mycodedstuff/pibot/internal/domain/media/errors"
)

func TestResolveOriginDirect(t *testing.T) {
	env := newTestEnv(t)
	want := env.addOrigin(10)

	msg, err := env.uc.resolveOrigin(context.Background(), mediaRequest(10, "a.mkv", "X"))
	require.NoError(t, err)
	require.Same(t, want, msg)
	require.Equal(t, []string{originDirect}, env.metrics.origins)
	require.Empty(t, env.client.searches)
}

func TestResolveOriginFallsBackToCaptionSearch(t *testing.T) {
	env := newTestEnv(t)
	found := &entities.RemoteMessage{ID: 99, Media: &entities.RemoteMedia{DocumentID: 1}}
	env.client.search = found

	req := mediaRequest(10, "a.mkv", "X")
	req.Caption = "Some Movie 2021"

	msg, err := env.uc.resolveOrigin(context.Background(), req)
	require.NoError(t, err)
	require.Same(t, found, msg)
	require.Equal(t, []string{"Some Movie 2021"}, env.client.searches)
	require.Equal(t, []string{originSearch}, env.metrics.origins)
}

func TestResolveOriginMissReturnsNil(t *testing.T) {
	env := newTestEnv(t)

	msg, err := env.uc.resolveOrigin(context.Background(), mediaRequest(10, "a.mkv", "X"))
	require.NoError(t, err)
	require.Nil(t, msg)
	require.Empty(t, env.client.searches, "no caption means no search")
	require.Equal(t, []string{originMiss}, env.metrics.origins)
}

func TestResolveOriginWithoutForward(t *testing.T) {
	env := newTestEnv(t)
	req := mediaRequest(10, "a.mkv", "X")
	req.Forward = nil

	err := env.uc.HandleMedia(context.Background(), req)
	require.ErrorIs(t, err, mediaerrors.ErrOriginUnresolved)
	require.Equal(t, 0, env.registry.Len())
}

func TestResolveOriginTransportErrorIsNotAMiss(t *testing.T) {
	env := newTestEnv(t)
	env.client.resolveErr = errors.New("rpc timeout")

	_, err := env.uc.resolveOrigin(context.Background(), mediaRequest(10, "a.mkv", "X"))
	require.Error(t, err)
	require.NotErrorIs(t, err, mediaerrors.ErrOriginUnresolved)
	require.Empty(t, env.metrics.origins)
}

func TestHandleMediaUnresolved(t *testing.T) {
	env := newTestEnv(t)

	err := env.uc.HandleMedia(context.Background(), mediaRequest(10, "a.mkv", "X"))
	require.ErrorIs(t, err, mediaerrors.ErrOriginUnresolved)
	require.Equal(t, 0, env.pending.Len())
	require.Empty(t, env.sender.texts())
}

func TestHandleMediaRequiresConnectedClient(t *testing.T) {
	env := newTestEnv(t)
	env.client.connected = false

	err := env.uc.HandleMedia(context.Background(), mediaRequest(10, "a.mkv", "X"))
	require.ErrorIs(t, err, mediaerrors.ErrNotConnected)
}

func TestConnectAndDisconnect(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.uc.HandleConnect(ctx, 7, 1)
	require.ErrorIs(t, err, mediaerrors.ErrAlreadyConnected)

	resp, err := env.uc.HandleDisconnect(ctx)
	require.NoError(t, err)
	require.Equal(t, consts.MsgDisconnected, resp.Message)

	_, err = env.uc.HandleDisconnect(ctx)
	require.ErrorIs(t, err, mediaerrors.ErrNotConnected)

	resp, err = env.uc.HandleConnect(ctx, 7, 1)
	require.NoError(t, err)
	require.Equal(t, consts.MsgConnected, resp.Message)
	require.Equal(t, []string{consts.MsgConnecting, "enter the code"}, env.sender.texts())
}
