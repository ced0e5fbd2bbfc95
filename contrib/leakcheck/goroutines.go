package leakcheck

import (
	"bytes"
	"log"
	"runtime"
	"time"
)

// settleGoroutines polls until at most max goroutines are running or the
// timeout passes, returning the last count seen.
func settleGoroutines(max int, timeout time.Duration) int {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		runtime.Gosched()
		count := runtime.NumGoroutine()
		if count <= max {
			return count
		}

		select {
		case <-ticker.C:
		case <-timer.C:
			return runtime.NumGoroutine()
		}
	}
}

// goroutineStacks returns the stacks of every goroutine except the caller.
func goroutineStacks() [][]byte {
	buf := make([]byte, 1<<20)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			buf = buf[:n]
			break
		}
		buf = make([]byte, 2*len(buf))
	}

	stacks := bytes.Split(buf, []byte("\n\n"))
	if len(stacks) > 0 {
		// the first entry is always the calling goroutine
		stacks = stacks[1:]
	}
	return stacks
}

// ReportLeakedGoroutines logs the stack of every goroutine other than the
// caller which is still running a second after the tests finished.  It must
// be called from TestMain once m.Run has returned.
func ReportLeakedGoroutines() bool {
	count := settleGoroutines(1, 1*time.Second)
	if count <= 1 {
		log.Printf("No goroutines appear to have leaked")
		return true
	}

	stacks := goroutineStacks()
	log.Printf("Found %d leaked goroutines", len(stacks))
	for _, stack := range stacks {
		log.Printf("Leaked goroutine: %s", stack)
	}

	return false
}
