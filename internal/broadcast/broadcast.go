// Package broadcast fans session events out to server-sent event streams.
package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"

	"gameshow/internal/events"
)

// Message is one SSE frame: the event name and its JSON payload.
type Message struct {
	Event string
	Data  string
}

type Broadcaster struct {
	Mu      sync.Mutex
	Clients map[chan Message]bool
}

// NewBroadcaster subscribes to the bus and forwards every event to the
// connected streams.
func NewBroadcaster(bus *events.Bus) *Broadcaster {
	b := &Broadcaster{
		Clients: make(map[chan Message]bool),
	}
	bus.Subscribe(b)
	return b
}

func (b *Broadcaster) Notify(ev events.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("broadcast marshal", "kind", ev.Kind(), "err", err)
		return
	}
	b.Broadcast(string(ev.Kind()), string(data))
}

func (b *Broadcaster) Subscribe() chan Message {
	ch := make(chan Message, 10)
	b.Mu.Lock()
	b.Clients[ch] = true
	b.Mu.Unlock()
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan Message) {
	b.Mu.Lock()
	delete(b.Clients, ch)
	b.Mu.Unlock()
	close(ch)
}

func (b *Broadcaster) Broadcast(event, data string) {
	b.Mu.Lock()
	defer b.Mu.Unlock()
	for ch := range b.Clients {
		select {
		case ch <- Message{Event: event, Data: data}:
		default:
			// skip clients with full data channels
		}
	}
}
