package notify_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwarren/fleetbook/backend/internal/notify"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAsyncNotifier_DeliversToWebhook(t *testing.T) {
	var (
		mu       sync.Mutex
		received []notify.Event
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e notify.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	}))
	defer srv.Close()

	n := notify.NewAsyncNotifier(srv.URL, discardLogger())

	n.Notify("reservation.created", map[string]any{"total_price": 300.0})
	n.Close(2 * time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "reservation.created", received[0].Name)
	assert.Equal(t, 300.0, received[0].Fields["total_price"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestAsyncNotifier_WebhookFailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := notify.NewAsyncNotifier(srv.URL, discardLogger())

	// must not panic, block, or surface anything to the caller
	n.Notify("reservation.created", nil)
	n.Close(2 * time.Second)
}

func TestAsyncNotifier_LogOnlyWithoutWebhook(t *testing.T) {
	n := notify.NewAsyncNotifier("", discardLogger())

	n.Notify("reservation.cancelled", map[string]any{"reservation_id": "abc"})
	n.Close(2 * time.Second)
}

func TestAsyncNotifier_NotifyNeverBlocks(t *testing.T) {
	// an unreachable endpoint keeps the worker busy; flooding far past the
	// queue capacity must still return promptly, dropping the overflow
	n := notify.NewAsyncNotifier("http://127.0.0.1:1", discardLogger())
	defer n.Close(time.Second)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10_000; i++ {
			n.Notify("reservation.created", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Notify blocked the caller")
	}
}
