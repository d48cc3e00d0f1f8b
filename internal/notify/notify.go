// Package notify delivers reservation lifecycle events to an external
// channel with fire-and-forget semantics: dispatch never blocks the caller,
// failures are logged and swallowed, and a lost event never affects the
// committed reservation state.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Event is one outbound notification.
type Event struct {
	Name      string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Fields    map[string]any `json:"fields"`
}

// AsyncNotifier queues events onto an internal channel consumed by a single
// worker goroutine, decoupling webhook latency from request latency. With no
// webhook URL configured it degrades to structured logging of each event.
//
// The webhook call runs behind a circuit breaker so a dead endpoint is
// skipped instead of paying a connection timeout per event.
type AsyncNotifier struct {
	queue      chan Event
	done       chan struct{}
	webhookURL string
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker[any]
	log        *slog.Logger
}

// NewAsyncNotifier starts the worker goroutine and returns the notifier.
// webhookURL may be empty, in which case events are only logged.
func NewAsyncNotifier(webhookURL string, logger *slog.Logger) *AsyncNotifier {
	n := &AsyncNotifier{
		queue:      make(chan Event, 256),
		done:       make(chan struct{}),
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		log:        logger,
		breaker: gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
			Name:    "notify-webhook",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
	go n.run()
	return n
}

// Notify enqueues an event without blocking. When the queue is full the
// event is dropped with a warning — lost notifications are acceptable,
// a stalled booking request is not.
func (n *AsyncNotifier) Notify(event string, fields map[string]any) {
	e := Event{Name: event, Timestamp: time.Now().UTC(), Fields: fields}
	select {
	case n.queue <- e:
	default:
		n.log.Warn("notification queue full, event dropped", "event", event)
	}
}

// Close stops accepting events and waits for the worker to drain the queue,
// up to the given timeout.
func (n *AsyncNotifier) Close(timeout time.Duration) {
	close(n.queue)
	select {
	case <-n.done:
	case <-time.After(timeout):
		n.log.Warn("notifier shutdown timed out with events still queued")
	}
}

func (n *AsyncNotifier) run() {
	defer close(n.done)
	for e := range n.queue {
		n.deliver(e)
	}
}

func (n *AsyncNotifier) deliver(e Event) {
	if n.webhookURL == "" {
		n.log.Info("notification", "event", e.Name, "fields", e.Fields)
		return
	}

	_, err := n.breaker.Execute(func() (any, error) {
		body, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal event: %w", err)
		}

		resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return nil, fmt.Errorf("webhook returned %s", resp.Status)
		}
		return nil, nil
	})
	if err != nil {
		// The reservation is already committed; the failure only gets logged.
		n.log.Warn("notification delivery failed", "event", e.Name, "error", err)
	}
}
