package redis

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty URL", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, "")
		require.ErrorIs(t, err, ErrEmptyConnectionURL)
		require.Nil(t, client)
	})

	testCases := []struct {
		name string
		url  string
	}{
		{name: "http scheme", url: "http://localhost:6379"},
		{name: "no scheme", url: "localhost:6379"},
		{name: "invalid port", url: "redis://localhost:notaport"},
		{name: "invalid database", url: "redis://localhost:6379/notanumber"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client, err := Open(ctx, tc.url)
			require.ErrorIs(t, err, ErrFailedToParseURL)
			require.Nil(t, client)
		})
	}
}

func TestOpen_Unreachable(t *testing.T) {
	t.Parallel()

	client, err := Open(context.Background(), "redis://127.0.0.1:1/0",
		WithRetry(2, time.Millisecond),
		WithTimeouts(50*time.Millisecond, 50*time.Millisecond),
	)
	require.ErrorIs(t, err, ErrConnectionFailed)
	require.Nil(t, client)
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	t.Run("closes the client", func(t *testing.T) {
		t.Parallel()

		c := &mockCloser{}
		require.NoError(t, Shutdown(c)(context.Background()))
		require.True(t, c.closed)
	})

	t.Run("propagates close error", func(t *testing.T) {
		t.Parallel()

		want := errors.New("close error")
		c := &mockCloser{err: want}
		require.ErrorIs(t, Shutdown(c)(context.Background()), want)
	})
}

func TestWait(t *testing.T) {
	t.Parallel()

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		require.ErrorIs(t, wait(ctx, 10*time.Second), context.Canceled)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("waits for the full duration", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		require.NoError(t, wait(context.Background(), 30*time.Millisecond))
		require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	})
}

func TestOptions(t *testing.T) {
	t.Parallel()

	o := defaultOptions()
	WithPoolSize(25)(o)
	WithRetry(5, time.Second)(o)
	WithTimeouts(7*time.Second, 0)(o)
	WithLogger(nil)(o)

	require.Equal(t, 25, o.poolSize)
	require.Equal(t, 5, o.retryAttempts)
	require.Equal(t, time.Second, o.retryInterval)
	require.Equal(t, 7*time.Second, o.ioTimeout)
	require.Equal(t, 5*time.Second, o.dialTimeout)
	require.NotNil(t, o.logger)
}

type mockCloser struct {
	closed bool
	err    error
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}

var _ io.Closer = (*mockCloser)(nil)
