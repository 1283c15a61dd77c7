package kvserver

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// getFreePort asks the OS for an ephemeral port, then releases it
// immediately so gnet can bind it.
func getFreePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// startTestServer boots a Server on a free loopback port and returns a
// connected go-redis client plus a teardown func.
func startTestServer(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	port := getFreePort(t)
	s := New()

	done := make(chan error, 1)
	go func() {
		done <- s.Run("127.0.0.1", fmt.Sprintf("%d", port), EngineOptions{})
	}()

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	client := redis.NewClient(&redis.Options{Addr: addr})

	var lastErr error
	for i := 0; i < 50; i++ {
		if err := client.Echo(context.Background(), "ping").Err(); err == nil {
			lastErr = nil
			break
		} else {
			lastErr = err
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, lastErr, "server never became ready")

	teardown := func() {
		client.Close()
		s.Close()
		<-done
	}
	return client, teardown
}

func TestIntegrationSetGetDel(t *testing.T) {
	client, teardown := startTestServer(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	val, err := client.Get(ctx, "k").Result()
	require.NoError(t, err)
	require.Equal(t, "v", val)

	n, err := client.Del(ctx, "k").Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestIntegrationListOps(t *testing.T) {
	client, teardown := startTestServer(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, client.LPush(ctx, "l", "a", "b", "c").Err())
	vals, err := client.LRange(ctx, "l", 0, -1).Result()
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "a"}, vals)
}

func TestIntegrationMultiExec(t *testing.T) {
	client, teardown := startTestServer(t)
	defer teardown()
	ctx := context.Background()

	pipe := client.TxPipeline()
	pipe.Set(ctx, "a", "1", 0)
	pipe.Incr(ctx, "a")
	_, err := pipe.Exec(ctx)
	require.NoError(t, err)

	val, err := client.Get(ctx, "a").Result()
	require.NoError(t, err)
	require.Equal(t, "2", val)
}

func TestIntegrationIncrOverflow(t *testing.T) {
	client, teardown := startTestServer(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "n", "9223372036854775807", 0).Err())
	err := client.Incr(ctx, "n").Err()
	require.Error(t, err)
}
