// Package sse pushes server-sent events to connected dashboard clients.
package sse

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// writeTimeout bounds a single client write so one stale connection
// cannot stall a broadcast.
const writeTimeout = 2 * time.Second

// Event is the wire payload for one SSE message.
type Event struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
}

// NewEvent builds an event of the given type stamped with the current time.
func NewEvent(kind string) Event {
	return Event{Type: kind, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

type client struct {
	id      string
	writer  http.ResponseWriter
	flusher http.Flusher
	done    chan struct{}
}

// Broadcaster fans events out to every connected client.
type Broadcaster struct {
	clients map[string]*client
	mu      sync.RWMutex
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[string]*client)}
}

// ClientCount returns the number of connected clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Broadcast sends the event to every connected client. Writes run
// concurrently with a per-client timeout; clients that fail or stall are
// dropped.
func (b *Broadcaster) Broadcast(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal SSE event")
		return
	}
	message := fmt.Sprintf("data: %s\n\n", payload)

	b.mu.RLock()
	targets := make([]*client, 0, len(b.clients))
	for _, c := range b.clients {
		targets = append(targets, c)
	}
	b.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	dead := make(chan string, len(targets))
	var wg sync.WaitGroup
	for _, c := range targets {
		select {
		case <-c.done:
			continue
		default:
		}
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			b.write(c, message, dead)
		}(c)
	}
	wg.Wait()
	close(dead)

	for id := range dead {
		b.remove(id)
	}
}

func (b *Broadcaster) write(c *client, message string, dead chan<- string) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := c.writer.Write([]byte(message)); err != nil {
			log.Debug().Str("client_id", c.id).Err(err).Msg("SSE write failed")
			dead <- c.id
			return
		}
		c.flusher.Flush()
	}()

	select {
	case <-done:
	case <-time.After(writeTimeout):
		log.Warn().Str("client_id", c.id).Msg("SSE write timed out")
		dead <- c.id
	case <-c.done:
	}
}

func (b *Broadcaster) add(w http.ResponseWriter) (*client, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	c := &client{
		id:      uuid.NewString(),
		writer:  w,
		flusher: flusher,
		done:    make(chan struct{}),
	}

	b.mu.Lock()
	b.clients[c.id] = c
	total := len(b.clients)
	b.mu.Unlock()

	log.Debug().Str("client_id", c.id).Int("total_clients", total).Msg("SSE client connected")
	return c, nil
}

func (b *Broadcaster) remove(id string) {
	b.mu.Lock()
	c, exists := b.clients[id]
	if exists {
		delete(b.clients, id)
	}
	total := len(b.clients)
	b.mu.Unlock()

	if !exists {
		return
	}
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	log.Debug().Str("client_id", id).Int("total_clients", total).Msg("SSE client disconnected")
}

// ServeHTTP upgrades the request to an event stream and blocks until the
// client disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	c, err := b.add(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer b.remove(c.id)

	fmt.Fprintf(w, "data: {\"type\":\"connected\",\"client_id\":%q}\n\n", c.id)
	c.flusher.Flush()

	select {
	case <-r.Context().Done():
	case <-c.done:
	}
}
