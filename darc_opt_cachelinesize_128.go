//go:build darc_opt_cachelinesize_128

package darc

const CacheLineSize = 128
