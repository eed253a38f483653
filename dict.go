// Package keyspace implements the keyspace index of a single-process
// key-value store: a chained hash table with power-of-two bucket arrays that
// grows and shrinks by incremental rehashing instead of stop-the-world
// copies.
//
// A Dict keeps two bucket arrays (generations). While a resize is in flight
// every operation migrates one bucket from the old generation to the new one
// before doing its own work; lookups and deletes consult both generations,
// inserts only go to the new one. Callers can also drive the migration from
// idle time with Rehash or RehashFor.
//
// Traversal comes in three flavours:
//   - safe iterators pause rehashing and allow the table to be modified
//     while they are open;
//   - unsafe iterators are cheaper but panic if they detect that the table
//     was structurally modified under them;
//   - Scan walks the table through an integer cursor across many calls and
//     returns every entry present for the whole scan at least once, even
//     when the table is resized between calls.
//
// A Dict is not safe for concurrent use by multiple goroutines.
package keyspace

import (
	"fmt"
	"strings"
	"time"
	"unsafe"

	"golang.org/x/exp/rand"
)

// Dict is a hash table mapping K to V with incremental rehashing.
//
// Keys are hashed, compared, duplicated and destroyed through the Type
// descriptor given to New. A Dict must not be copied after first use.
type Dict[K comparable, V any] struct {
	//lint:ignore U1000 prevents false sharing
	pad [(CacheLineSize - unsafe.Sizeof(struct {
		typ         unsafe.Pointer
		privdata    any
		ht          [2]tableLayout
		rehashIdx   int64
		iterators   int
		pauseRehash int
		version     uint64
		rng         *rand.Rand
		initialSize uint64
		forceRatio  uint64
		emptyVisits int
		growths     uint32
		shrinks     uint32
		resizeOn    bool
		growOnly    bool
	}{})%CacheLineSize) % CacheLineSize]byte

	_           noCopy
	typ         *Type[K, V]
	privdata    any
	ht          [2]table[K, V]
	rehashIdx   int64 // -1 when not rehashing, else next ht[0] bucket to migrate
	iterators   int   // registered safe iterators
	pauseRehash int   // safe iterators plus scans in progress
	version     uint64
	rng         *rand.Rand
	initialSize uint64
	forceRatio  uint64
	emptyVisits int
	growths     uint32
	shrinks     uint32
	resizeOn    bool
	growOnly    bool
}

// table is one generation: a power-of-two array of chain heads.
type table[K comparable, V any] struct {
	buckets  []*Entry[K, V]
	size     uint64
	sizeMask uint64
	used     uint64
}

// tableLayout mirrors table without type parameters so the Dict padding
// can be sized at compile time.
type tableLayout struct {
	buckets  []unsafe.Pointer
	size     uint64
	sizeMask uint64
	used     uint64
}

func (t *table[K, V]) reset() {
	*t = table[K, V]{}
}

// noCopy may be embedded into structs which must not be copied
// after the first use. See go vet's copylocks check.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// New creates an empty Dict. typ must provide Hash; privdata is passed to
// every callback of typ.
//
// Parameters:
//   - WithInitialSize, WithPresize for capacity
//   - WithResizeDisabled, WithGrowOnly, WithForceResizeRatio for the resize policy
//   - WithEmptyVisits for the rehash step bound
//   - WithRandSeed for reproducible sampling
func New[K comparable, V any](
	typ *Type[K, V],
	privdata any,
	options ...func(*Config),
) *Dict[K, V] {
	if typ == nil || typ.Hash == nil {
		panic(ErrNilHash)
	}
	var cfg Config
	for _, opt := range options {
		opt(&cfg)
	}

	d := &Dict[K, V]{
		typ:         typ,
		privdata:    privdata,
		rehashIdx:   -1,
		initialSize: defaultInitialSize,
		forceRatio:  defaultForceResizeRatio,
		emptyVisits: defaultEmptyVisits,
		resizeOn:    !cfg.resizeDisabled,
		growOnly:    cfg.growOnly,
	}
	if cfg.initialSize > 0 {
		d.initialSize = uint64(nextPowOf2(cfg.initialSize))
	}
	if cfg.presize > 0 {
		d.initialSize = max(d.initialSize, uint64(nextPowOf2(cfg.presize)))
	}
	if cfg.forceResizeRatio > 0 {
		d.forceRatio = uint64(cfg.forceResizeRatio)
	}
	if cfg.emptyVisits > 0 {
		d.emptyVisits = cfg.emptyVisits
	}
	seed := cfg.randSeed
	if !cfg.hasRandSeed {
		seed = uint64(time.Now().UnixNano()) ^ HashFunctionSeed()
	}
	d.rng = rand.New(rand.NewSource(seed))
	if cfg.presize > 0 {
		_ = d.expand(d.initialSize)
	}
	return d
}

//go:nosplit
func (d *Dict[K, V]) isRehashing() bool {
	return d.rehashIdx != -1
}

// IsRehashing reports whether entries are being migrated between
// generations.
func (d *Dict[K, V]) IsRehashing() bool {
	return d.isRehashing()
}

// Size returns the number of entries across both generations.
func (d *Dict[K, V]) Size() int {
	return int(d.ht[0].used + d.ht[1].used)
}

// Slots returns the number of buckets across both generations.
func (d *Dict[K, V]) Slots() int {
	return int(d.ht[0].size + d.ht[1].size)
}

// Hash returns the hash the table uses for key.
func (d *Dict[K, V]) Hash(key K) uint64 {
	return d.hashKey(key)
}

// Add inserts key with val. It returns false, leaving the table untouched,
// when key is already present.
func (d *Dict[K, V]) Add(key K, val V) bool {
	entry, _ := d.AddRaw(key)
	if entry == nil {
		return false
	}
	d.SetVal(entry, val)
	return true
}

// AddRaw is the low level insert. It links a new entry holding key, with a
// zero value, and returns it; the caller sets the value. If key already
// exists, entry is nil and existing is the entry holding key.
//
// AddRaw lets callers store the value in the numeric slot instead of Val:
//
//	if e, _ := d.AddRaw(key); e != nil {
//		e.SetSignedIntegerVal(1)
//	}
func (d *Dict[K, V]) AddRaw(key K) (entry, existing *Entry[K, V]) {
	if d.isRehashing() {
		d.rehashStep()
	}

	hash := d.hashKey(key)
	idx, found := d.keyIndex(key, hash)
	if found != nil {
		return nil, found
	}

	// While rehashing new entries go to the new generation only, so the
	// old one drains monotonically.
	t := &d.ht[0]
	if d.isRehashing() {
		t = &d.ht[1]
	}
	entry = &Entry[K, V]{next: t.buckets[idx]}
	entry.setHash(hash)
	t.buckets[idx] = entry
	t.used++
	d.setKey(entry, key)
	d.version++
	return entry, nil
}

// AddOrFind returns the entry holding key, inserting one with a zero value
// when key is absent.
func (d *Dict[K, V]) AddOrFind(key K) *Entry[K, V] {
	entry, existing := d.AddRaw(key)
	if entry != nil {
		return entry
	}
	return existing
}

// Replace stores val under key. It returns true if key was added and false
// if an existing value was overwritten. The new value is set before the old
// one is destroyed, so replacing a reference-counted value with itself is
// safe.
func (d *Dict[K, V]) Replace(key K, val V) bool {
	entry, existing := d.AddRaw(key)
	if entry != nil {
		d.SetVal(entry, val)
		return true
	}
	old := *existing
	d.SetVal(existing, val)
	d.freeVal(&old)
	return false
}

// keyIndex returns the bucket index for key in the generation that
// receives inserts, or the entry that already holds key.
func (d *Dict[K, V]) keyIndex(key K, hash uint64) (uint64, *Entry[K, V]) {
	d.expandIfNeeded()
	var idx uint64
	for i := 0; i <= 1; i++ {
		t := &d.ht[i]
		idx = hash & t.sizeMask
		for he := t.buckets[idx]; he != nil; he = he.next {
			if d.compareKeys(key, he.key) {
				return idx, he
			}
		}
		if !d.isRehashing() {
			break
		}
	}
	return idx, nil
}

// Find returns the entry holding key, or nil.
func (d *Dict[K, V]) Find(key K) *Entry[K, V] {
	if d.ht[0].used+d.ht[1].used == 0 {
		return nil
	}
	if d.isRehashing() {
		d.rehashStep()
	}
	hash := d.hashKey(key)
	for i := 0; i <= 1; i++ {
		t := &d.ht[i]
		if t.size == 0 {
			break
		}
		for he := t.buckets[hash&t.sizeMask]; he != nil; he = he.next {
			if d.compareKeys(key, he.key) {
				return he
			}
		}
		if !d.isRehashing() {
			break
		}
	}
	return nil
}

// FetchValue returns the value stored under key.
func (d *Dict[K, V]) FetchValue(key K) (value V, ok bool) {
	if he := d.Find(key); he != nil {
		return he.val, true
	}
	return
}

// FindEntryRef returns the address of the link pointing at the entry that
// stores exactly key, located with a hash the caller already computed. Keys
// are matched with == rather than the descriptor's KeyCompare, so only the
// stored key itself matches. Writing through the returned reference lets a
// caller swap the entry for a relocated copy in place. It does not step
// the rehash and returns nil when no entry matches.
func (d *Dict[K, V]) FindEntryRef(key K, hash uint64) **Entry[K, V] {
	if d.ht[0].used+d.ht[1].used == 0 {
		return nil
	}
	for i := 0; i <= 1; i++ {
		t := &d.ht[i]
		if t.size == 0 {
			break
		}
		for ref := &t.buckets[hash&t.sizeMask]; *ref != nil; ref = &(*ref).next {
			if (*ref).key == key {
				return ref
			}
		}
		if !d.isRehashing() {
			break
		}
	}
	return nil
}

// Delete removes key, running the descriptor's destructors. It reports
// whether key was present.
func (d *Dict[K, V]) Delete(key K) bool {
	he := d.genericDelete(key, false)
	d.shrinkIfNeeded()
	return he != nil
}

// Unlink detaches the entry holding key without destroying it, so the
// caller can still use its key and value. The entry must then be handed
// to FreeUnlinkedEntry. Unlink returns nil if key is absent.
func (d *Dict[K, V]) Unlink(key K) *Entry[K, V] {
	he := d.genericDelete(key, true)
	d.shrinkIfNeeded()
	return he
}

// FreeUnlinkedEntry runs the destructors for an entry returned by Unlink.
// It is a no-op for nil.
func (d *Dict[K, V]) FreeUnlinkedEntry(he *Entry[K, V]) {
	if he == nil {
		return
	}
	d.freeKey(he)
	d.freeVal(he)
}

func (d *Dict[K, V]) genericDelete(key K, nofree bool) *Entry[K, V] {
	if d.ht[0].used+d.ht[1].used == 0 {
		return nil
	}
	if d.isRehashing() {
		d.rehashStep()
	}
	hash := d.hashKey(key)
	for i := 0; i <= 1; i++ {
		t := &d.ht[i]
		if t.size == 0 {
			break
		}
		idx := hash & t.sizeMask
		var prev *Entry[K, V]
		for he := t.buckets[idx]; he != nil; he = he.next {
			if d.compareKeys(key, he.key) {
				if prev != nil {
					prev.next = he.next
				} else {
					t.buckets[idx] = he.next
				}
				he.next = nil
				if !nofree {
					d.freeKey(he)
					d.freeVal(he)
				}
				t.used--
				d.version++
				return he
			}
			prev = he
		}
		if !d.isRehashing() {
			break
		}
	}
	return nil
}

// Empty removes every entry, running the destructors, and returns the
// table to its unallocated state. If callback is not nil it is invoked
// every 65536 buckets so the caller can serve other work during a long
// clear.
func (d *Dict[K, V]) Empty(callback func()) {
	for i := range d.ht {
		t := &d.ht[i]
		for j := uint64(0); j < t.size && t.used > 0; j++ {
			if callback != nil && j&emptyCallbackMask == 0 {
				callback()
			}
			he := t.buckets[j]
			for he != nil {
				next := he.next
				d.freeKey(he)
				d.freeVal(he)
				he.next = nil
				t.used--
				he = next
			}
		}
		t.reset()
	}
	d.rehashIdx = -1
	d.version++
}

// Release destroys every entry. The Dict stays usable and empty.
func (d *Dict[K, V]) Release() {
	d.Empty(nil)
}

// String implement the formatting output interface fmt.Stringer.
// At most 1024 entries are printed.
func (d *Dict[K, V]) String() string {
	const limit = 1024
	var sb strings.Builder
	sb.WriteString("Dict[")
	n := 0
	for i := range d.ht {
		t := &d.ht[i]
		for j := uint64(0); j < t.size && n < limit; j++ {
			for he := t.buckets[j]; he != nil && n < limit; he = he.next {
				if n > 0 {
					sb.WriteByte(' ')
				}
				fmt.Fprintf(&sb, "%v:%v", he.key, he.val)
				n++
			}
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
