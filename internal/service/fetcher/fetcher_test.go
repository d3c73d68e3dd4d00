package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/agf-installer/internal/domain/release"
)

// TestFetch_OK downloads a body and sends a user agent.
func TestFetch_OK(t *testing.T) {
	t.Parallel()

	var userAgent atomic.Value

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent.Store(r.UserAgent())
		_, _ = w.Write([]byte("archive"))
	}))
	defer ts.Close()

	data, err := New(WithHTTPClient(ts.Client())).Fetch(context.Background(), ts.URL+"/agf.tar.gz")
	require.NoError(t, err)
	require.Equal(t, []byte("archive"), data)

	got, _ := userAgent.Load().(string)
	require.True(t, strings.HasPrefix(got, "agf-installer/"), got)
}

// TestFetch_NotFoundIsNotRetried maps 404 to ErrFetch without extra attempts.
func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.NotFound(w, nil)
	}))
	defer ts.Close()

	_, err := New(WithRetries(3), WithBackoff(0)).Fetch(context.Background(), ts.URL)
	require.ErrorIs(t, err, release.ErrFetch)
	require.ErrorIs(t, err, errBadHTTPStatus)
	require.Equal(t, int32(1), calls.Load())
}

// TestFetch_RetriesServerErrors retries 5xx replies up to the configured count.
func TestFetch_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	data, err := New(WithRetries(2), WithBackoff(time.Millisecond)).Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	require.Equal(t, []byte("ok"), data)
	require.Equal(t, int32(3), calls.Load())
}

// TestFetch_SizeLimit rejects bodies over the cap.
func TestFetch_SizeLimit(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer ts.Close()

	_, err := New(WithMaxSize(16)).Fetch(context.Background(), ts.URL)
	require.ErrorIs(t, err, release.ErrFetch)
	require.ErrorIs(t, err, errTooLarge)
}

// TestFetch_Timeout bounds slow servers.
func TestFetch_Timeout(t *testing.T) {
	t.Parallel()

	unblock := make(chan struct{})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-unblock:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(unblock)

	_, err := New(WithTimeout(50*time.Millisecond)).Fetch(context.Background(), ts.URL)
	require.Error(t, err)
}
