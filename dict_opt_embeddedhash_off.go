//go:build !dict_opt_embeddedhash

package keyspace

const embeddedHash = false

// Entry is a single key/value pair linked into a bucket chain.
//
// Besides the generic value, an entry carries one inline 64-bit numeric
// slot that can hold a uint64, an int64 or a float64. Counters and scores
// stored there need no extra allocation. The slot and Val are independent;
// callers pick whichever representation their value uses.
type Entry[K comparable, V any] struct {
	key  K
	val  V
	num  uint64
	next *Entry[K, V]
}

//go:nosplit
func (e *Entry[K, V]) getHash() uint64 {
	return 0
}

//go:nosplit
func (e *Entry[K, V]) setHash(h uint64) {
}
