// Package priority elevates the calling goroutine's OS thread to the
// highest scheduling priority the platform allows, for the render thread
// named in spec §4.3/§5 ("Elevated to max OS priority ... falling back with
// a warning if elevation fails").
//
// Grounded on the other_examples/manifests ehrlich-b-go-ublk pattern of
// pairing runtime.LockOSThread with golang.org/x/sys/unix scheduler calls;
// chordrack trades that example's CPU-affinity pinning for priority/policy
// elevation, since the render loop needs to preempt reliably, not occupy a
// fixed core.
package priority

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Elevate locks the calling goroutine to its current OS thread (a
// precondition for per-thread scheduling changes to stick) and attempts to
// switch it to the SCHED_FIFO real-time policy at a high priority. The
// goroutine must not be unlocked from its thread afterward, which is always
// true for the render loop's dedicated goroutine.
//
// On any failure (commonly EPERM outside of CAP_SYS_NICE, or on platforms
// where unix.SchedSetscheduler is unsupported) Elevate returns an error and
// leaves the thread at its inherited priority; the caller is expected to
// log the failure as an advisory warning and continue, per spec §7's
// "Thread-priority elevation failure (advisory)".
func Elevate() error {
	runtime.LockOSThread()

	const schedFIFO = unix.SCHED_FIFO
	priority, err := unix.SchedGetPriorityMax(schedFIFO)
	if err != nil {
		return fmt.Errorf("priority: query max SCHED_FIFO priority: %w", err)
	}

	param := &unix.SchedParam{Priority: int32(priority)}
	if err := unix.SchedSetscheduler(0, schedFIFO, param); err != nil {
		return fmt.Errorf("priority: set SCHED_FIFO priority %d: %w", priority, err)
	}
	return nil
}
