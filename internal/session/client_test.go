package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zhamesh/internal/codec"
)

func TestClientQueryDevices(t *testing.T) {
	hub := newFakeHub(t, "secret")
	hub.noise = true

	client := NewClient(hub.URL(), "secret", zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.Connect(ctx))
	defer client.Close()

	for want := 1; want <= 3; want++ {
		raw, capturedAt, err := client.QueryDevices(ctx)
		require.NoError(t, err)
		assert.Zero(t, capturedAt.Nanosecond(), "capture time is truncated to the second")

		snap, err := codec.DecodeDevices(raw, capturedAt)
		require.NoError(t, err)
		assert.Equal(t, want, snap.RequestID)
		assert.True(t, snap.Success)
		require.Len(t, snap.Devices, 1)
	}

	assert.Equal(t, []int{1, 2, 3}, hub.IDs())
}

func TestClientReconnectResetsIDs(t *testing.T) {
	hub := newFakeHub(t, "secret")
	client := NewClient(hub.URL(), "secret", zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, client.Connect(ctx))
	_, _, err := client.QueryDevices(ctx)
	require.NoError(t, err)
	_, _, err = client.QueryDevices(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Connect(ctx))
	defer client.Close()
	_, _, err = client.QueryDevices(ctx)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 1}, hub.IDs())
	assert.Equal(t, 2, hub.Conns())
}

func TestClientAuthFailed(t *testing.T) {
	hub := newFakeHub(t, "secret")
	client := NewClient(hub.URL(), "wrong", zerolog.Nop())

	err := client.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Contains(t, err.Error(), "Invalid access token")
}

func TestClientQueryBeforeConnect(t *testing.T) {
	client := NewClient("ws://127.0.0.1:1/api/websocket", "x", zerolog.Nop())

	_, _, err := client.QueryDevices(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestClientDialError(t *testing.T) {
	hub := newFakeHub(t, "secret")
	url := hub.URL()
	hub.server.Close()

	client := NewClient(url, "secret", zerolog.Nop())
	err := client.Connect(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthFailed)
}
