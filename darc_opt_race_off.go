//go:build !race

package darc

import (
	"runtime"
	"sync/atomic"
)

// Detect TSO architectures; on TSO a plain read of the mode word is safe:
// local-mode readers run on the goroutine that would perform the mode
// store, and cross-goroutine readers are ordered by the hand-off of the
// Shared handle that published the block.
const isTSO = runtime.GOARCH == "amd64" ||
	runtime.GOARCH == "386" ||
	runtime.GOARCH == "s390x"

// TSO: plain mode-flag load; non-TSO: use atomic.LoadUint32
//
//go:nosplit
func loadMode(addr *uint32) uint32 {
	if isTSO {
		return *addr
	}
	return atomic.LoadUint32(addr)
}
