//go:build darc_opt_cachelinesize_32

package darc

// CacheLineSize set via build tag for targets where the x/sys detection is
// wrong or padding should be minimized.
const CacheLineSize = 32
