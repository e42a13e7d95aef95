// Package source fans in the independent poller goroutines (uplink,
// localfile, manifest, collection subpackages) into the single event
// channel internal/serverstate.Machine.Run consumes, preserving each
// poller's own event order while interleaving across pollers in arrival
// order. Grounded on original_source/.../runtime/{schema_source,operation_source}.rs's
// event-stream model; the teacher has no poller code of its own.
package source

import (
	"sync"

	"github.com/graphql-mcp/bridge/internal/serverstate"
)

// Merge fans multiple poller event channels into one channel of capacity
// 100, matching SPEC_FULL.md §5's bounded-mailbox requirement. The
// returned channel is closed once every input channel has closed.
func Merge(sources ...<-chan serverstate.Event) <-chan serverstate.Event {
	out := make(chan serverstate.Event, 100)
	var wg sync.WaitGroup
	wg.Add(len(sources))
	for _, s := range sources {
		go func(s <-chan serverstate.Event) {
			defer wg.Done()
			for ev := range s {
				out <- ev
			}
		}(s)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
