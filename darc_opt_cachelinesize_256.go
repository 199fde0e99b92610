//go:build darc_opt_cachelinesize_256

package darc

const CacheLineSize = 256
