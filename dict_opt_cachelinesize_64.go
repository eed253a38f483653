//go:build dict_opt_cachelinesize_64

package keyspace

// CacheLineSize is fixed at build time, for targets whose cache line
// differs from what golang.org/x/sys/cpu reports.
const CacheLineSize = 64
