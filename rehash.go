package keyspace

import (
	"time"

	"golang.org/x/exp/constraints"
)

// maxTableSize is the largest bucket count nextPowOf2 can produce
// without overflowing.
const maxTableSize = uint64(1) << 62

// nextPowOf2 calculates the smallest power of 2 that is greater than or
// equal to n.
func nextPowOf2[T constraints.Integer](n T) T {
	if n <= 1 {
		return 1
	}
	v := uint64(n)
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	v++
	return T(v)
}

// expand allocates a generation of at least size buckets. On an
// unallocated table it becomes ht[0] directly; otherwise it becomes ht[1]
// and incremental rehashing starts. size may be smaller than the current
// capacity, which is how shrinking works.
func (d *Dict[K, V]) expand(size uint64) error {
	if d.isRehashing() {
		return ErrRehashing
	}
	if d.ht[0].used > size || size > maxTableSize {
		return ErrInvalidSize
	}
	realSize := max(nextPowOf2(size), d.initialSize)
	if realSize == d.ht[0].size {
		return nil
	}

	n := table[K, V]{
		buckets:  make([]*Entry[K, V], realSize),
		size:     realSize,
		sizeMask: realSize - 1,
	}
	d.version++
	if d.ht[0].buckets == nil {
		d.ht[0] = n
		return nil
	}
	if realSize > d.ht[0].size {
		d.growths++
	} else {
		d.shrinks++
	}
	d.ht[1] = n
	d.rehashIdx = 0
	return nil
}

// Expand makes room for at least size entries at load factor 1. It is a
// no-op when the table is already large enough.
func (d *Dict[K, V]) Expand(size int) error {
	if d.isRehashing() {
		return ErrRehashing
	}
	if d.pauseRehash > 0 && d.ht[0].buckets != nil {
		return ErrIteratorsOpen
	}
	if size < 0 || uint64(size) < d.ht[0].used {
		return ErrInvalidSize
	}
	if d.ht[0].buckets != nil && uint64(size) <= d.ht[0].size {
		return nil
	}
	return d.expand(uint64(size))
}

// Resize shrinks (or grows) the table to the smallest size that holds all
// entries at load factor 1, never below the initial size.
func (d *Dict[K, V]) Resize() error {
	if !d.resizeOn {
		return ErrResizeDisabled
	}
	if d.isRehashing() {
		return ErrRehashing
	}
	if d.pauseRehash > 0 {
		return ErrIteratorsOpen
	}
	return d.expand(max(d.ht[0].used, d.initialSize))
}

// EnableResize turns automatic resizing back on.
func (d *Dict[K, V]) EnableResize() {
	d.resizeOn = true
}

// DisableResize stops automatic growth and shrinking, for instance while a
// copy-on-write snapshot of the process is alive. Tables still grow once
// their load factor passes the force ratio.
func (d *Dict[K, V]) DisableResize() {
	d.resizeOn = false
}

// expandIfNeeded runs before every insert.
func (d *Dict[K, V]) expandIfNeeded() {
	if d.isRehashing() {
		return
	}
	t := &d.ht[0]
	if t.size == 0 {
		_ = d.expand(d.initialSize)
		return
	}
	if d.pauseRehash > 0 {
		return
	}
	if t.used >= t.size && (d.resizeOn || t.used/t.size > d.forceRatio) {
		_ = d.expand(t.used * 2)
	}
}

// shrinkIfNeeded runs after every delete and offers to shrink a mostly
// empty table.
func (d *Dict[K, V]) shrinkIfNeeded() {
	if d.growOnly || !d.resizeOn || d.isRehashing() || d.pauseRehash > 0 {
		return
	}
	t := &d.ht[0]
	if t.size > d.initialSize && t.used*100/t.size < minFillPercent {
		_ = d.expand(max(t.used, d.initialSize))
	}
}

// Rehash migrates up to n non-empty buckets from the old generation to the
// new one. To bound the time spent, at most n*emptyVisits empty buckets
// are skipped per call. It returns true if there are still entries to
// move, false once the table is back to a single generation.
//
// While a safe iterator or a scan is open nothing moves and Rehash
// reports pending work.
func (d *Dict[K, V]) Rehash(n int) bool {
	if !d.isRehashing() {
		return false
	}
	if d.pauseRehash > 0 {
		return true
	}

	emptyVisits := n * d.emptyVisits
	old, nt := &d.ht[0], &d.ht[1]
	for ; n > 0 && old.used != 0; n-- {
		// rehashIdx stays in range: old.used != 0 means a non-empty
		// bucket lies ahead.
		for old.buckets[d.rehashIdx] == nil {
			d.rehashIdx++
			emptyVisits--
			if emptyVisits == 0 {
				return true
			}
		}
		he := old.buckets[d.rehashIdx]
		for he != nil {
			next := he.next
			var h uint64
			if embeddedHash {
				h = he.getHash()
			} else {
				h = d.hashKey(he.key)
			}
			idx := h & nt.sizeMask
			he.next = nt.buckets[idx]
			nt.buckets[idx] = he
			old.used--
			nt.used++
			he = next
		}
		old.buckets[d.rehashIdx] = nil
		d.rehashIdx++
		d.version++
	}

	if old.used == 0 {
		d.ht[0] = d.ht[1]
		d.ht[1].reset()
		d.rehashIdx = -1
		d.version++
		return false
	}
	return true
}

// RehashFor rehashes in batches of 100 buckets until the table is done or
// budget has elapsed, and returns the number of buckets requested across
// batches. It is meant for idle-time callers such as a server cron.
func (d *Dict[K, V]) RehashFor(budget time.Duration) int {
	if d.pauseRehash > 0 {
		return 0
	}
	start := time.Now()
	rehashes := 0
	for d.Rehash(rehashBatch) {
		rehashes += rehashBatch
		if time.Since(start) > budget {
			break
		}
	}
	return rehashes
}

// rehashStep is the opportunistic single-bucket step run ahead of lookups
// and updates.
func (d *Dict[K, V]) rehashStep() {
	if d.pauseRehash == 0 {
		d.Rehash(1)
	}
}
