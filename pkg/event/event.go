// Package event provides a small in-process event dispatcher. Services
// fire events such as "item.sold" and the server registers listeners at
// boot; listeners must not be registered after requests start flowing.
package event

import "sync"

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

// Listen registers a handler for the given event name.
func Listen(name string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[name] = append(handlers[name], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
func Fire(name string, payload interface{}) {
	for _, h := range snapshot(name) {
		h(payload)
	}
}

// FireAsync dispatches the event to all listeners concurrently and
// returns without waiting for them.
func FireAsync(name string, payload interface{}) {
	for _, h := range snapshot(name) {
		go h(payload)
	}
}

// Flush removes all listeners. Tests use this between cases.
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}

func snapshot(name string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	return append([]Handler(nil), handlers[name]...)
}
