// Package nexusalloc is a general-purpose dynamic memory allocator tuned for
// frequent small-object allocation under multi-goroutine workloads. It
// exposes a size-typed allocate/deallocate interface: the caller supplies the
// original size again on free, which avoids a per-object header.
//
// The allocator is organized the way tcmalloc/jemalloc are: a fixed
// size-class table partitions requests into 24 bins, a P-shard arena (by
// default GOMAXPROCS shards rounded up to a power of two, selected by a fast
// affinity hash rather
// than OS thread-local storage, which Go does not expose) serves the hot
// path out of per-bin slab lists, and a lock-free global chunk stack
// recycles the underlying 2 MiB OS mappings across shards.
//
// Basic usage:
//
//	a := nexusalloc.New()
//	p := a.Allocate(64)
//	if p == nil {
//		log.Fatal("out of memory")
//	}
//	defer a.Deallocate(p, 64)
//
// Advanced usage with options:
//
//	a := nexusalloc.New(
//		nexusalloc.WithHugePages(),
//		nexusalloc.WithMemoryLocking(),
//		nexusalloc.WithLogger(slog.Default()),
//	)
package nexusalloc
