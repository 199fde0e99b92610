//go:build race

package darc

import (
	"sync/atomic"
)

// Under race detector, disable TSO optimizations and use conservative
// atomic loads
const isTSO = false

// Conservative: atomic mode-flag load to satisfy race detector
//
//go:nosplit
func loadMode(addr *uint32) uint32 {
	return atomic.LoadUint32(addr)
}
