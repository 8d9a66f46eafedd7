package client

import (
	"testing"
	"time"

	"github.com/jassi-singh/kvs/internal/engine"
	"github.com/jassi-singh/kvs/internal/pool"
	"github.com/jassi-singh/kvs/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialWithRetry tolerates the race between the server's background Run
// call and this test's first Dial attempt.
func dialWithRetry(t *testing.T, addr string) (*Client, error) {
	t.Helper()
	var lastErr error
	for i := 0; i < 50; i++ {
		c, err := Dial(addr)
		if err == nil {
			return c, nil
		}
		lastErr = err
		time.Sleep(10 * time.Millisecond)
	}
	return nil, lastErr
}

func TestClient_DialFailsWithoutServer(t *testing.T) {
	_, err := Dial("127.0.0.1:1")
	assert.Error(t, err)
}

func TestClient_GetSetAgainstLiveServer(t *testing.T) {
	eng, err := engine.Open(engine.KVS, t.TempDir())
	require.NoError(t, err)
	defer eng.Close()

	p, err := pool.NewNaivePool(2)
	require.NoError(t, err)
	defer p.Shutdown()

	srv := server.New(eng, p)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run("127.0.0.1:14777") }()

	c, err := dialWithRetry(t, "127.0.0.1:14777")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set("greeting", "hello"))
	value, found, err := c.Get("greeting")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "hello", value)
}
