//go:build debug

package rtcheck

import (
	"fmt"
	"runtime"
	"sync"
)

// debugOwner records which goroutine claims ownership of a real-time
// resource (the render loop's instrument/voice state, the audio callback's
// tailFrame advance) so that debug builds can catch an accidental
// cross-thread call that production builds would otherwise let through
// silently.
type debugOwner struct {
	mu      sync.Mutex
	owners  map[string]uint64
}

var owners = &debugOwner{owners: make(map[string]uint64)}

// ClaimOwner records the calling goroutine as the exclusive owner of name.
func ClaimOwner(name string) {
	owners.mu.Lock()
	defer owners.mu.Unlock()
	owners.owners[name] = goroutineID()
}

// AssertOwner panics if the calling goroutine is not the recorded owner of
// name. No-op (the claim is implicitly trusted) if name was never claimed.
func AssertOwner(name string) {
	owners.mu.Lock()
	id, ok := owners.owners[name]
	owners.mu.Unlock()
	if !ok {
		return
	}
	if current := goroutineID(); current != id {
		panic(fmt.Sprintf("rtcheck: %s accessed from goroutine %d, owned by %d", name, current, id))
	}
}

func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	id := uint64(0)
	for i := 10; i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
