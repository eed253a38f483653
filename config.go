package keyspace

const (
	// defaultInitialSize is the bucket count of a table on its first insert.
	defaultInitialSize = 4
	// defaultForceResizeRatio is the load factor that forces growth even
	// when resizing is disabled, bounding chain length.
	defaultForceResizeRatio = 5
	// defaultEmptyVisits bounds, per migrated bucket, how many empty buckets
	// a rehash step may skip before returning.
	defaultEmptyVisits = 10
	// minFillPercent is the occupancy under which a table offers to shrink.
	minFillPercent = 10
	// rehashBatch is the bucket count RehashFor migrates between clock checks.
	rehashBatch = 100
	// emptyCallbackMask gates the Empty callback to once every 65536 buckets.
	emptyCallbackMask = 65535
)

// Config defines configurable Dict options.
type Config struct {
	initialSize      int
	presize          int
	resizeDisabled   bool
	growOnly         bool
	forceResizeRatio int
	emptyVisits      int
	randSeed         uint64
	hasRandSeed      bool
}

// WithInitialSize sets the bucket count allocated on the first insert and
// the floor shrinking never goes below. It is rounded up to a power of two.
// Non-positive values are ignored.
func WithInitialSize(size int) func(*Config) {
	return func(c *Config) {
		c.initialSize = size
	}
}

// WithPresize allocates, at creation, enough buckets to hold sizeHint
// entries at load factor 1. The capacity is treated as the minimal
// capacity meaning that the table never shrinks below it. If sizeHint is
// zero or negative, the value is ignored.
func WithPresize(sizeHint int) func(*Config) {
	return func(c *Config) {
		c.presize = sizeHint
	}
}

// WithResizeDisabled creates the Dict with resizing switched off, as if
// DisableResize had been called. Growth still happens past the force ratio.
func WithResizeDisabled() func(*Config) {
	return func(c *Config) {
		c.resizeDisabled = true
	}
}

// WithGrowOnly disables automatic shrinking after deletes. Resize can
// still be called explicitly.
func WithGrowOnly() func(*Config) {
	return func(c *Config) {
		c.growOnly = true
	}
}

// WithForceResizeRatio sets the load factor at which a table grows even
// with resizing disabled (default 5).
func WithForceResizeRatio(ratio int) func(*Config) {
	return func(c *Config) {
		c.forceResizeRatio = ratio
	}
}

// WithEmptyVisits sets how many empty buckets a rehash step may skip per
// bucket it was asked to migrate (default 10).
func WithEmptyVisits(n int) func(*Config) {
	return func(c *Config) {
		c.emptyVisits = n
	}
}

// WithRandSeed seeds the random source used by GetRandomEntry and
// GetSomeKeys, making sampling reproducible.
func WithRandSeed(seed uint64) func(*Config) {
	return func(c *Config) {
		c.randSeed = seed
		c.hasRandSeed = true
	}
}
