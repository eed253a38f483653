package keyspace

// Type is the capability set a Dict needs from its caller. Only Hash is
// required; every other field may be left nil and falls back to a no-op
// (duplicators store the argument as is, destructors do nothing) or, for
// KeyCompare, to Go's == operator on K.
//
// privdata is the opaque context given to New, passed verbatim to every
// callback.
type Type[K comparable, V any] struct {
	Hash          func(key K) uint64
	KeyDup        func(privdata any, key K) K
	ValDup        func(privdata any, val V) V
	KeyCompare    func(privdata any, k1, k2 K) bool
	KeyDestructor func(privdata any, key K)
	ValDestructor func(privdata any, val V)
}

//go:nosplit
func (d *Dict[K, V]) hashKey(key K) uint64 {
	return d.typ.Hash(key)
}

func (d *Dict[K, V]) compareKeys(k1, k2 K) bool {
	if d.typ.KeyCompare != nil {
		return d.typ.KeyCompare(d.privdata, k1, k2)
	}
	return k1 == k2
}

func (d *Dict[K, V]) setKey(e *Entry[K, V], key K) {
	if d.typ.KeyDup != nil {
		e.key = d.typ.KeyDup(d.privdata, key)
	} else {
		e.key = key
	}
}

func (d *Dict[K, V]) freeKey(e *Entry[K, V]) {
	if d.typ.KeyDestructor != nil {
		d.typ.KeyDestructor(d.privdata, e.key)
	}
}

func (d *Dict[K, V]) freeVal(e *Entry[K, V]) {
	if d.typ.ValDestructor != nil {
		d.typ.ValDestructor(d.privdata, e.val)
	}
}

// SetVal stores val in e, running the descriptor's ValDup when present.
// The previous value is not destroyed; Replace does that.
func (d *Dict[K, V]) SetVal(e *Entry[K, V], val V) {
	if d.typ.ValDup != nil {
		e.val = d.typ.ValDup(d.privdata, val)
	} else {
		e.val = val
	}
}
