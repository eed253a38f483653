//go:build !dict_opt_cachelinesize_64 && !dict_opt_cachelinesize_128

package keyspace

import (
	"unsafe"

	"golang.org/x/sys/cpu"
)

// CacheLineSize is used in structure padding to prevent false sharing
// between dictionaries allocated next to each other.
// It's automatically calculated using the `golang.org/x/sys` package.
const CacheLineSize = unsafe.Sizeof(cpu.CacheLinePad{})
