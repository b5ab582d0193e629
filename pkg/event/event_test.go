package event_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cpbyrne/ostaa/pkg/event"
)

func TestFireReachesAllListeners(t *testing.T) {
	defer event.Flush()

	var got []string
	event.Listen("item.sold", func(payload interface{}) {
		got = append(got, payload.(string))
	})
	event.Listen("item.sold", func(payload interface{}) {
		got = append(got, payload.(string))
	})

	event.Fire("item.sold", "abc123")

	assert.Equal(t, []string{"abc123", "abc123"}, got)
}

func TestFireWithoutListeners(t *testing.T) {
	defer event.Flush()

	// Must not panic.
	event.Fire("nobody.cares", 42)
}

func TestFireAsync(t *testing.T) {
	defer event.Flush()

	var wg sync.WaitGroup
	wg.Add(2)

	var mu sync.Mutex
	count := 0
	for i := 0; i < 2; i++ {
		event.Listen("ping", func(payload interface{}) {
			mu.Lock()
			count++
			mu.Unlock()
			wg.Done()
		})
	}

	event.FireAsync("ping", nil)
	wg.Wait()

	assert.Equal(t, 2, count)
}

func TestFlushRemovesListeners(t *testing.T) {
	fired := false
	event.Listen("x", func(payload interface{}) { fired = true })
	event.Flush()

	event.Fire("x", nil)
	assert.False(t, fired)
}
