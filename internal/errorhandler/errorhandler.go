package errorhandler

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"

	"github.com/777genius/audioswitch/internal/logging"
)

var (
	mu              sync.RWMutex
	logToConsole    = true
	exitOnCritical  = false
	recoveryEnabled = true

	// exitFunc is replaced in tests
	exitFunc = os.Exit
)

// Init configures the global error handler
func Init(console, exitCritical, recovery bool) {
	mu.Lock()
	defer mu.Unlock()

	logToConsole = console
	exitOnCritical = exitCritical
	recoveryEnabled = recovery
}

// HandlePanic recovers from a panic and logs it with a stack trace.
// Must be called directly via defer.
func HandlePanic() {
	mu.RLock()
	enabled := recoveryEnabled
	mu.RUnlock()

	if !enabled {
		return
	}

	if r := recover(); r != nil {
		stack := debug.Stack()
		logging.Error("PANIC recovered: %v\n%s", r, stack)
		consolef("Recovered from panic: %v\n", r)
	}
}

// HandleError logs a non-fatal error with context
func HandleError(err error, context string) {
	if err == nil {
		return
	}
	logging.Error("%s: %v", context, err)
	consolef("Error: %s: %v\n", context, err)
}

// HandleCriticalError logs a critical error and exits if configured to
func HandleCriticalError(err error, context string) {
	if err == nil {
		return
	}
	logging.Error("CRITICAL: %s: %v", context, err)
	consolef("Critical error: %s: %v\n", context, err)

	mu.RLock()
	exit := exitOnCritical
	mu.RUnlock()

	if exit {
		logging.Close()
		exitFunc(1)
	}
}

// WrapError wraps err with context, returning nil for a nil err
func WrapError(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

func consolef(format string, args ...interface{}) {
	mu.RLock()
	console := logToConsole
	mu.RUnlock()

	if console {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
