package keyspace

import (
	"errors"
	"fmt"
)

var (
	// ErrNilHash is raised by New when the type descriptor has no Hash.
	ErrNilHash = errors.New("keyspace: type descriptor has no hash function")
	// ErrRehashing is returned by Expand and Resize while an incremental
	// rehash is still in progress.
	ErrRehashing = errors.New("keyspace: rehash in progress")
	// ErrIteratorsOpen is returned by Expand and Resize while a safe
	// iterator or a scan holds the table.
	ErrIteratorsOpen = errors.New("keyspace: iterators open")
	// ErrInvalidSize is returned by Expand when the requested capacity
	// cannot hold the entries already stored.
	ErrInvalidSize = errors.New("keyspace: invalid size")
	// ErrResizeDisabled is returned by Resize when resizing is switched off.
	ErrResizeDisabled = errors.New("keyspace: resize disabled")
	// ErrIteratorMisuse reports a structural change of the table while an
	// unsafe iterator was open.
	ErrIteratorMisuse = errors.New("keyspace: table modified during unsafe iteration")
	// ErrIteratorReleased reports a Next call on a released iterator.
	ErrIteratorReleased = errors.New("keyspace: iterator already released")
)

// MisuseError is the panic value raised when an unsafe iterator detects
// that the table changed under it.
type MisuseError struct {
	Op       string // "next" or "release"
	Expected uint64 // structural version captured by the iterator
	Observed uint64 // structural version of the table at check time
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("keyspace: %s: structural version %d, iterator expected %d",
		e.Op, e.Observed, e.Expected)
}

func (e *MisuseError) Unwrap() error {
	return ErrIteratorMisuse
}
