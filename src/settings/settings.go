package settings

import (
	"sync"
	"time"
)

type Arguments struct {
	// The file path to the datafiles
	DataDir string
	LogFile string

	ConfigFile string

	// The mode of operation
	// standalone, cluster
	Mode string

	// the host name or IP address to listen on
	Host string

	// the port number to listen on
	Port int

	// Strongly verbose logging
	Verbose bool

	AuthEnabled bool // Enable authentication

	// LockTimeout bounds how long a command waits to acquire a table lock
	// from the concurrency manager before failing with ErrTimeout.
	LockTimeout time.Duration

	// MaxJournalEntries caps the number of inverse records an
	// AtomicLogScope accumulates before a command is rejected outright,
	// guarding against an unbounded undo buffer on a runaway cascade.
	MaxJournalEntries int

	// Debug gates the extra per-step logging the director services emit.
	Debug bool
}

// Default returns the Arguments a standalone process starts with absent any
// configuration file or flags.
func Default() *Arguments {
	return &Arguments{
		Mode:              "standalone",
		Host:              "localhost",
		Port:              5454,
		LockTimeout:       5 * time.Second,
		MaxJournalEntries: 10000,
	}
}

var (
	current *Arguments
	mu      sync.RWMutex
)

// GetSettings returns the process-wide Arguments, defaulting them on first
// use so callers never see a nil settings object.
func GetSettings() *Arguments {
	mu.RLock()
	if current != nil {
		defer mu.RUnlock()
		return current
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if current == nil {
		current = Default()
	}
	return current
}

// SetSettings installs args as the process-wide Arguments, replacing
// whatever was there before — used once at startup after flags and any
// config file have been parsed.
func SetSettings(args *Arguments) {
	mu.Lock()
	defer mu.Unlock()
	current = args
}
