//go:build darc_opt_cachelinesize_64

package darc

const CacheLineSize = 64
