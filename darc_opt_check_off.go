//go:build !darc_opt_check

package darc

// ownerCheck is compiled out unless the darc_opt_check build tag is set:
// zero size, and its methods inline to nothing.
type ownerCheck struct{}

func (ownerCheck) initOwner() {}

func (ownerCheck) assertOwner() {}
