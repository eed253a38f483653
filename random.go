package keyspace

// GetRandomEntry returns a random entry, or nil when the table is empty.
//
// A non-empty bucket is chosen uniformly across both generations and an
// entry is then chosen uniformly within its chain, so entries in long
// chains are less likely to be picked than entries alone in a bucket.
func (d *Dict[K, V]) GetRandomEntry() *Entry[K, V] {
	if d.Size() == 0 {
		return nil
	}
	if d.isRehashing() {
		d.rehashStep()
	}

	var he *Entry[K, V]
	t0 := &d.ht[0]
	if d.isRehashing() {
		// ht[0] buckets below rehashIdx were already migrated and are empty.
		idx := uint64(d.rehashIdx)
		slots := t0.size + d.ht[1].size
		for he == nil {
			h := idx + d.rng.Uint64n(slots-idx)
			if h >= t0.size {
				he = d.ht[1].buckets[h-t0.size]
			} else {
				he = t0.buckets[h]
			}
		}
	} else {
		for he == nil {
			he = t0.buckets[d.rng.Uint64()&t0.sizeMask]
		}
	}

	// Chains are short and their length unknown: reservoir-sample in one
	// pass.
	var pick *Entry[K, V]
	n := uint64(0)
	for ; he != nil; he = he.next {
		n++
		if d.rng.Uint64n(n) == 0 {
			pick = he
		}
	}
	return pick
}

// GetSomeKeys samples up to count entries by walking consecutive buckets
// from a random position. It is much faster than calling GetRandomEntry
// count times but the result is not uniformly distributed: entries
// sharing a chain are returned together. The returned entries are
// distinct. It may return fewer than count entries when it gives up after
// count*10 buckets.
func (d *Dict[K, V]) GetSomeKeys(count int) []*Entry[K, V] {
	if size := d.Size(); count > size {
		count = size
	}
	if count <= 0 {
		return nil
	}
	maxSteps := count * 10

	// Do a rehashing work proportional to count.
	for j := 0; j < count && d.isRehashing(); j++ {
		d.rehashStep()
	}

	tables := 1
	if d.isRehashing() {
		tables = 2
	}
	maxSizeMask := d.ht[0].sizeMask
	if tables > 1 && d.ht[1].sizeMask > maxSizeMask {
		maxSizeMask = d.ht[1].sizeMask
	}

	des := make([]*Entry[K, V], 0, count)
	// random restarts may land on buckets already collected
	seen := make(map[*Entry[K, V]]struct{}, count)
	i := d.rng.Uint64() & maxSizeMask
	emptyLen := 0
	for ; len(des) < count && maxSteps > 0; maxSteps-- {
		for j := 0; j < tables; j++ {
			t := &d.ht[j]
			// Buckets of ht[0] below rehashIdx are already migrated.
			if tables == 2 && j == 0 && i < uint64(d.rehashIdx) {
				// When ht[1] is the smaller table, indexes past its end
				// only exist in ht[0]: jump to the unmigrated part.
				if i >= d.ht[1].size {
					i = uint64(d.rehashIdx)
				} else {
					continue
				}
			}
			if i >= t.size {
				continue
			}
			he := t.buckets[i]
			if he == nil {
				// Count contiguous empty buckets, and jump to other
				// locations if they reach 'count' (with a minimum of 5).
				emptyLen++
				if emptyLen >= 5 && emptyLen > count {
					i = d.rng.Uint64() & maxSizeMask
					emptyLen = 0
				}
				continue
			}
			emptyLen = 0
			for ; he != nil; he = he.next {
				if _, dup := seen[he]; dup {
					continue
				}
				seen[he] = struct{}{}
				des = append(des, he)
				if len(des) == count {
					return des
				}
			}
		}
		i = (i + 1) & maxSizeMask
	}
	return des
}
