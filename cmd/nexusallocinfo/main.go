// Command nexusallocinfo builds an allocator, runs a small scripted
// workload against it and prints the resulting stats as JSON. It exists
// mostly to exercise the package from outside its own test suite.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"unsafe"

	"github.com/sethigeet/nexusalloc"
)

type liveAlloc struct {
	ptr  unsafe.Pointer
	size int
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	a := nexusalloc.New(nexusalloc.WithLogger(logger))
	defer a.Reclaim()

	sizes := []int{16, 32, 64, 128, 256, 512, 1024, 4096, 1 << 20}
	var live []liveAlloc
	for i := 0; i < 500; i++ {
		size := sizes[i%len(sizes)]
		p := a.Allocate(size)
		if p == nil {
			fmt.Fprintln(os.Stderr, "allocation failed")
			os.Exit(1)
		}
		live = append(live, liveAlloc{ptr: p, size: size})
		if i%3 == 0 {
			last := live[len(live)-1]
			a.Deallocate(last.ptr, last.size)
			live = live[:len(live)-1]
		}
	}
	for _, l := range live {
		a.Deallocate(l.ptr, l.size)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(a.Stats())
}
