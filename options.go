package nexusalloc

import "log/slog"

// config holds allocator construction options, assembled by the
// functional-options pattern: each Option mutates one field on a config
// built from defaults, then New consumes it once.
type config struct {
	hugePages    bool
	memoryLock   bool
	logger       *slog.Logger
	shardCount   int
	heapFallback bool
}

func defaultConfig() config {
	return config{
		shardCount: 0, // 0 means "use GOMAXPROCS", resolved in newShardArena
	}
}

// Option configures a *NexusAllocator constructed by New.
type Option func(*config)

// WithHugePages attempts a huge-page mapping for every chunk, falling
// back to regular pages when the kernel refuses it. On platforms other
// than Linux the hint is ignored and regular pages are always used.
func WithHugePages() Option {
	return func(c *config) { c.hugePages = true }
}

// WithMemoryLocking best-effort pins the allocator's pages into physical
// memory when New builds the allocator; failure is never fatal.
func WithMemoryLocking() Option {
	return func(c *config) { c.memoryLock = true }
}

// WithLogger attaches a structured logger for the allocator's rare
// non-fatal diagnostics (huge-page fallback, memory-lock failure). The
// hot allocate/deallocate path never logs.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithHeapFallback lets Allocate satisfy a request from the plain Go heap
// when the arena's page provider is out of memory, rather than returning
// nil. It is an opt-in escape hatch, never the default path: a successful
// fallback allocation is tracked separately so Deallocate can recognize
// and release it without routing it back through the arena.
func WithHeapFallback() Option {
	return func(c *config) { c.heapFallback = true }
}

// WithShardCount overrides the number of P-shards the arena maintains.
// It is rounded up to a power of two; values <= 0 panic, since an
// explicit override that can't produce a usable shard count is a
// programmer-error contract breach rather than a runtime condition.
func WithShardCount(n int) Option {
	return func(c *config) {
		if n <= 0 {
			panicInvalidArgument(ErrInvalidShardCount)
		}
		c.shardCount = n
	}
}
