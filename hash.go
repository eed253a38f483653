package keyspace

import (
	"encoding/binary"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/rand"
)

// hashSeed keys every hash produced by the Gen* functions. It is process
// wide so tables created with the ready-made types agree on bucket placement.
var hashSeed atomic.Uint64

var digestPool = sync.Pool{
	New: func() any { return xxhash.New() },
}

func init() {
	hashSeed.Store(rand.New(rand.NewSource(uint64(time.Now().UnixNano()))).Uint64())
}

// SetHashFunctionSeed replaces the process-wide hash seed. It must be
// called before any table hashed with the Gen* functions holds data.
func SetHashFunctionSeed(seed uint64) {
	hashSeed.Store(seed)
}

// HashFunctionSeed returns the process-wide hash seed.
func HashFunctionSeed() uint64 {
	return hashSeed.Load()
}

// GenHashFunction hashes buf with seeded xxhash64.
func GenHashFunction(buf []byte) uint64 {
	d := digestPool.Get().(*xxhash.Digest)
	d.ResetWithSeed(hashSeed.Load())
	_, _ = d.Write(buf)
	h := d.Sum64()
	digestPool.Put(d)
	return h
}

// GenHashString is GenHashFunction for strings, without the conversion copy.
func GenHashString(s string) uint64 {
	d := digestPool.Get().(*xxhash.Digest)
	d.ResetWithSeed(hashSeed.Load())
	_, _ = d.WriteString(s)
	h := d.Sum64()
	digestPool.Put(d)
	return h
}

// GenCaseHashFunction hashes buf ignoring ASCII case.
func GenCaseHashFunction(buf []byte) uint64 {
	d := digestPool.Get().(*xxhash.Digest)
	d.ResetWithSeed(hashSeed.Load())
	var lower [64]byte
	for len(buf) > 0 {
		n := copy(lower[:], buf)
		for i := 0; i < n; i++ {
			lower[i] = toLowerASCII(lower[i])
		}
		_, _ = d.Write(lower[:n])
		buf = buf[n:]
	}
	h := d.Sum64()
	digestPool.Put(d)
	return h
}

// GenCaseHashString is GenCaseHashFunction for strings.
func GenCaseHashString(s string) uint64 {
	d := digestPool.Get().(*xxhash.Digest)
	d.ResetWithSeed(hashSeed.Load())
	var lower [64]byte
	for len(s) > 0 {
		n := copy(lower[:], s)
		for i := 0; i < n; i++ {
			lower[i] = toLowerASCII(lower[i])
		}
		_, _ = d.Write(lower[:n])
		s = s[n:]
	}
	h := d.Sum64()
	digestPool.Put(d)
	return h
}

// GenUint64Hash hashes the little-endian encoding of v.
func GenUint64Hash(v uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return GenHashFunction(b[:])
}

//go:nosplit
func toLowerASCII(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// equalFoldASCII matches GenCaseHashString: keys equal under it always hash
// alike. strings.EqualFold folds non-ASCII runes too and would break that.
func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if toLowerASCII(a[i]) != toLowerASCII(b[i]) {
			return false
		}
	}
	return true
}

// StringType describes string keys compared byte by byte.
func StringType[V any]() *Type[string, V] {
	return &Type[string, V]{
		Hash: GenHashString,
	}
}

// StringCopyKeyType is StringType with keys cloned on insert, so a key
// sliced out of a large buffer does not pin that buffer.
func StringCopyKeyType[V any]() *Type[string, V] {
	return &Type[string, V]{
		Hash: GenHashString,
		KeyDup: func(_ any, key string) string {
			return strings.Clone(key)
		},
	}
}

// CaseStringType describes string keys compared without regard to ASCII case.
func CaseStringType[V any]() *Type[string, V] {
	return &Type[string, V]{
		Hash: GenCaseHashString,
		KeyCompare: func(_ any, k1, k2 string) bool {
			return equalFoldASCII(k1, k2)
		},
	}
}

// Uint64Type describes integer keys.
func Uint64Type[V any]() *Type[uint64, V] {
	return &Type[uint64, V]{
		Hash: GenUint64Hash,
	}
}
