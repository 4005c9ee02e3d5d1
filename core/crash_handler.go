package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// cleanupFn is invoked before the crash report is printed, typically to
// restore the terminal to a sane state. Stored atomically so hosts can
// register it after goroutines are already running.
var cleanupFn atomic.Pointer[func()]

// SetCrashCleanup registers a function to run before the crash report is
// printed. Pass nil to remove a previously registered cleanup.
func SetCrashCleanup(fn func()) {
	if fn == nil {
		cleanupFn.Store(nil)
		return
	}
	cleanupFn.Store(&fn)
}

// HandleCrash is the unified panic handler that runs the registered cleanup
// and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	if fn := cleanupFn.Load(); fn != nil {
		(*fn)()
	}

	os.Stdout.Sync()
	os.Stderr.Sync()

	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())

	os.Stderr.Sync()

	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure host cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
