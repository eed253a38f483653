package keyspace

import "math/bits"

// Scan iterates the table statelessly. Start with cursor 0 and call Scan
// again with the returned cursor until it returns 0. Every call visits one
// bucket (while rehashing, one bucket of the smaller generation and all the
// buckets of the larger one it expands to) and calls fn for each entry in
// it.
//
// Guarantees:
//   - an entry present from the first to the last call is returned at
//     least once, even if the table grows or shrinks between calls;
//   - an entry may be returned more than once;
//   - entries added during the scan may or may not be returned.
//
// fn may modify the table; resizing and rehashing are paused for the
// duration of the call and it may delete the entry it receives.
//
// The cursor is advanced by incrementing its bit-reversed form. Because
// tables are powers of two and a key's bucket is its hash masked by the
// table size, the buckets of a larger table that a bucket of a smaller
// table expands into all share the smaller bucket's low bits. Walking
// the high bits first therefore means a bucket is never left unvisited
// when the mask gains or loses bits between calls: at worst a few buckets
// are visited twice after a shrink.
func (d *Dict[K, V]) Scan(cursor uint64, fn func(e *Entry[K, V])) uint64 {
	return d.ScanBuckets(cursor, fn, nil)
}

// ScanBuckets is Scan with an extra callback receiving a pointer to the
// head of every visited bucket chain before its entries are passed to fn.
// bucketFn may relink the chain, for instance to replace entries with
// relocated copies; it must keep the chain's contents.
func (d *Dict[K, V]) ScanBuckets(
	cursor uint64,
	fn func(e *Entry[K, V]),
	bucketFn func(bucket **Entry[K, V]),
) uint64 {
	if d.Size() == 0 {
		return 0
	}
	d.pauseRehash++
	defer func() { d.pauseRehash-- }()

	v := cursor
	if !d.isRehashing() {
		t0 := &d.ht[0]
		m0 := t0.sizeMask
		d.scanBucket(t0, v&m0, fn, bucketFn)

		// Set unmasked bits so incrementing the reversed cursor operates
		// on the masked bits only.
		v |= ^m0
		v = bits.Reverse64(bits.Reverse64(v) + 1)
		return v
	}

	t0, t1 := &d.ht[0], &d.ht[1]
	// t0 is the smaller generation
	if t0.size > t1.size {
		t0, t1 = t1, t0
	}
	m0, m1 := t0.sizeMask, t1.sizeMask

	d.scanBucket(t0, v&m0, fn, bucketFn)

	// Visit every bucket of the larger table that the cursor's bucket of
	// the smaller one expands into.
	for {
		d.scanBucket(t1, v&m1, fn, bucketFn)

		v |= ^m1
		v = bits.Reverse64(bits.Reverse64(v) + 1)

		// Continue while bits covered by mask difference are non-zero
		if v&(m0^m1) == 0 {
			break
		}
	}
	return v
}

// scanBucket emits the chain at idx. The bound check keeps a callback that
// emptied the table from making the caller index a released array.
func (d *Dict[K, V]) scanBucket(
	t *table[K, V],
	idx uint64,
	fn func(e *Entry[K, V]),
	bucketFn func(bucket **Entry[K, V]),
) {
	if idx >= t.size {
		return
	}
	if bucketFn != nil {
		bucketFn(&t.buckets[idx])
	}
	he := t.buckets[idx]
	for he != nil {
		next := he.next
		if fn != nil {
			fn(he)
		}
		he = next
	}
}
