// Package events fans registry activity out to websocket viewers. Every
// subscriber gets its own buffered channel and a slow subscriber loses
// events instead of holding up the node.
package events

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// ViewerPrefix marks the messages that are meant for viewers.
const ViewerPrefix = "viewer:"

// subscriberBuffer is how many events a subscriber can fall behind before
// it starts losing them.
const subscriberBuffer = 100

// Events tracks the subscribers by id.
type Events struct {
	mu      sync.RWMutex
	subs    map[string]chan string
	dropped atomic.Uint64
}

// New constructs an empty set of subscribers.
func New() *Events {
	return &Events{
		subs: make(map[string]chan string),
	}
}

// Acquire subscribes the id and returns the channel its events arrive on.
// Acquiring an id twice returns the same channel.
func (evt *Events) Acquire(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.subs[id]; exists {
		return ch
	}

	ch := make(chan string, subscriberBuffer)
	evt.subs[id] = ch

	return ch
}

// Release unsubscribes the id and closes its channel.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subs[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(evt.subs, id)
	close(ch)

	return nil
}

// Shutdown unsubscribes everyone, which ends every open websocket.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subs {
		delete(evt.subs, id)
		close(ch)
	}
}

// Send delivers the message to every subscriber with room in its buffer
// and reports how many received it.
func (evt *Events) Send(msg string) int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	var delivered int
	for _, ch := range evt.subs {
		select {
		case ch <- msg:
			delivered++
		default:
			evt.dropped.Add(1)
		}
	}

	return delivered
}

// Publish formats an event raised while processing registry calls and
// sends it when it's meant for viewers. Its signature matches the event
// handler the state accepts.
func (evt *Events) Publish(v string, args ...any) {
	msg := fmt.Sprintf(v, args...)
	if strings.HasPrefix(msg, ViewerPrefix) {
		evt.Send(msg)
	}
}

// Count returns the number of subscribers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.subs)
}

// Dropped returns how many events were lost to full subscriber buffers.
func (evt *Events) Dropped() uint64 {
	return evt.dropped.Load()
}
