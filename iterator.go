package keyspace

// Iterator walks every entry of a Dict: ht[0] buckets in ascending order,
// each chain head to tail, then ht[1] when a rehash is pending.
//
// A safe iterator may be used while the table is modified: it pauses
// rehashing and resizing from creation until Release. The entry most recently
// returned may be deleted. Entries added during the iteration may or may
// not be returned.
//
// An unsafe iterator only allows Next. It records the table's structural
// version when created and panics with a *MisuseError if the version has
// moved by the time of any Next or Release. Note that Find also
// counts as a structural change while a rehash is in progress, since it
// migrates a bucket.
//
// An iterator must be released with Release.
type Iterator[K comparable, V any] struct {
	d         *Dict[K, V]
	index     int64
	table     int
	safe      bool
	released  bool
	entry     *Entry[K, V]
	nextEntry *Entry[K, V]
	version   uint64
}

// Iterator returns an iterator positioned before the first entry.
func (d *Dict[K, V]) Iterator(safe bool) *Iterator[K, V] {
	it := &Iterator[K, V]{d: d, index: -1, safe: safe}
	if safe {
		d.iterators++
		d.pauseRehash++
	} else {
		it.version = d.version
	}
	return it
}

// SafeIterator is shorthand for Iterator(true).
func (d *Dict[K, V]) SafeIterator() *Iterator[K, V] {
	return d.Iterator(true)
}

// UnsafeIterator is shorthand for Iterator(false).
func (d *Dict[K, V]) UnsafeIterator() *Iterator[K, V] {
	return d.Iterator(false)
}

func (it *Iterator[K, V]) verify(op string) {
	if v := it.d.version; v != it.version {
		panic(&MisuseError{Op: op, Expected: it.version, Observed: v})
	}
}

// Next returns the next entry, or nil once every entry has been returned.
func (it *Iterator[K, V]) Next() *Entry[K, V] {
	if it.released {
		panic(ErrIteratorReleased)
	}
	if !it.safe {
		it.verify("next")
	}
	for {
		if it.entry == nil {
			t := &it.d.ht[it.table]
			it.index++
			if uint64(it.index) >= t.size {
				if it.d.isRehashing() && it.table == 0 {
					it.table++
					it.index = 0
					t = &it.d.ht[1]
				} else {
					break
				}
			}
			it.entry = t.buckets[it.index]
		} else {
			it.entry = it.nextEntry
		}
		if it.entry != nil {
			// Saved here so the caller may delete the returned entry.
			it.nextEntry = it.entry.next
			return it.entry
		}
	}
	return nil
}

// Release ends the iteration. For a safe iterator it resumes rehashing;
// for an unsafe one it performs the final misuse check. Calling Release
// twice is a no-op.
func (it *Iterator[K, V]) Release() {
	if it.released {
		return
	}
	it.released = true
	if it.safe {
		it.d.iterators--
		it.d.pauseRehash--
	} else {
		it.verify("release")
	}
}

// All returns an iterator function for use with range-over-func.
// It runs a safe iterator, so the loop body may modify the table.
func (d *Dict[K, V]) All() func(yield func(K, V) bool) {
	return d.Range
}

// Keys is the iterator version for iterating over all keys.
func (d *Dict[K, V]) Keys() func(yield func(K) bool) {
	return func(yield func(K) bool) {
		d.Range(func(key K, _ V) bool {
			return yield(key)
		})
	}
}

// Range calls yield for every key/value pair until yield returns false.
func (d *Dict[K, V]) Range(yield func(key K, val V) bool) {
	it := d.SafeIterator()
	defer it.Release()
	for e := it.Next(); e != nil; e = it.Next() {
		if !yield(e.key, e.val) {
			return
		}
	}
}
