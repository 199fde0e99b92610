//go:build darc_opt_check

package darc

import (
	"runtime"
	"strconv"
	"strings"
)

// ownerCheck pins a block to its creating goroutine. Using a Local handle
// from any other goroutine while the block is in local mode is undefined
// behavior in normal builds; with this tag set it panics deterministically
// instead. The probe costs a runtime.Stack call per local-mode operation,
// which is why the check is opt-in.
type ownerCheck struct {
	gid uint64
}

func (c *ownerCheck) initOwner() {
	c.gid = goid()
}

func (c *ownerCheck) assertOwner() {
	if goid() != c.gid {
		panic("darc: Local handle used outside its owning goroutine")
	}
}

// goid parses the current goroutine id out of the header line of a stack
// trace ("goroutine 123 [running]:").
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := strings.Fields(string(buf[:n]))
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		panic("darc: cannot parse goroutine id: " + err.Error())
	}
	return id
}
