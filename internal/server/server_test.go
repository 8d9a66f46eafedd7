package server

import (
	"net"
	"testing"

	"github.com/jassi-singh/kvs/internal/client"
	"github.com/jassi-singh/kvs/internal/engine"
	"github.com/jassi-singh/kvs/internal/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestServer binds an ephemeral port, so concurrent test runs never
// collide on a fixed port, and drives the server's accept loop in the
// background for the duration of the test.
func startTestServer(t *testing.T) string {
	t.Helper()

	eng, err := engine.Open(engine.Sled, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })

	p, err := pool.NewSharedQueuePool(2)
	require.NoError(t, err)
	t.Cleanup(p.Shutdown)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	srv := New(eng, p)
	go srv.acceptLoop(ln)

	return ln.Addr().String()
}

func TestServer_GetSetRemoveRoundTrip(t *testing.T) {
	addr := startTestServer(t)

	c, err := client.Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	_, found, err := c.Get("missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set("k", "v"))

	value, found, err := c.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v", value)

	require.NoError(t, c.Remove("k"))

	err = c.Remove("k")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Key not found")
}

func TestServer_MultipleSequentialRequestsOnOneConnection(t *testing.T) {
	addr := startTestServer(t)

	c, err := client.Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	for i := 0; i < 20; i++ {
		key := "k"
		require.NoError(t, c.Set(key, "v"))
		value, found, err := c.Get(key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "v", value)
	}
}
