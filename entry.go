package keyspace

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Key returns the stored key.
func (e *Entry[K, V]) Key() K { return e.key }

// Val returns the stored value.
func (e *Entry[K, V]) Val() V { return e.val }

// SignedIntegerVal reads the numeric slot as an int64.
func (e *Entry[K, V]) SignedIntegerVal() int64 { return int64(e.num) }

// UnsignedIntegerVal reads the numeric slot as a uint64.
func (e *Entry[K, V]) UnsignedIntegerVal() uint64 { return e.num }

// DoubleVal reads the numeric slot as a float64.
func (e *Entry[K, V]) DoubleVal() float64 { return math.Float64frombits(e.num) }

// SetSignedIntegerVal stores v in the numeric slot.
func (e *Entry[K, V]) SetSignedIntegerVal(v int64) { e.num = uint64(v) }

// SetUnsignedIntegerVal stores v in the numeric slot.
func (e *Entry[K, V]) SetUnsignedIntegerVal(v uint64) { e.num = v }

// SetDoubleVal stores the bits of v in the numeric slot.
func (e *Entry[K, V]) SetDoubleVal(v float64) { e.num = math.Float64bits(v) }

// SetIntegerVal stores any integer type in the numeric slot of e.
// Signed values are sign-extended, so SignedIntegerVal reads them back.
func SetIntegerVal[K comparable, V any, T constraints.Integer](e *Entry[K, V], v T) {
	e.num = uint64(v)
}
