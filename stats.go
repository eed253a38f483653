package keyspace

import (
	"fmt"
	"strings"
)

// statsVectLen is the number of chain lengths tracked individually; longer
// chains are counted in the last slot.
const statsVectLen = 50

// Stats returns statistics for the Dict. It walks every bucket, so it is
// an O(N) operation meant for diagnostics and debugging.
func (d *Dict[K, V]) Stats() *DictStats {
	stats := &DictStats{
		Size:          d.Size(),
		Slots:         d.Slots(),
		Rehashing:     d.isRehashing(),
		RehashIdx:     d.rehashIdx,
		SafeIterators: d.iterators,
		ResizeEnabled: d.resizeOn,
		TotalGrowths:  d.growths,
		TotalShrinks:  d.shrinks,
	}
	stats.Tables = append(stats.Tables, d.ht[0].stats(0))
	if d.isRehashing() {
		stats.Tables = append(stats.Tables, d.ht[1].stats(1))
	}
	return stats
}

func (t *table[K, V]) stats(id int) TableStats {
	s := TableStats{
		ID:   id,
		Size: t.size,
		Used: t.used,
	}
	if t.used == 0 {
		return s
	}
	for i := uint64(0); i < t.size; i++ {
		he := t.buckets[i]
		if he == nil {
			s.ChainLenHist[0]++
			continue
		}
		s.Slots++
		chainLen := 0
		for ; he != nil; he = he.next {
			chainLen++
		}
		s.ChainLenHist[min(chainLen, statsVectLen-1)]++
		s.MaxChainLen = max(s.MaxChainLen, chainLen)
		s.TotalChainLen += uint64(chainLen)
	}
	return s
}

// DictStats is Dict statistics.
//
// Warning: statistics are intended to be used for diagnostic purposes,
// not for production code. Fields may change between minor releases.
type DictStats struct {
	// Size is the number of entries across both generations.
	Size int
	// Slots is the number of buckets across both generations.
	Slots int
	// Rehashing reports an incremental rehash in progress, RehashIdx is
	// its cursor (-1 when idle).
	Rehashing bool
	RehashIdx int64
	// SafeIterators is the number of registered safe iterators.
	SafeIterators int
	// ResizeEnabled mirrors EnableResize/DisableResize.
	ResizeEnabled bool
	// TotalGrowths is the number of times the table started growing.
	TotalGrowths uint32
	// TotalShrinks is the number of times the table started shrinking.
	TotalShrinks uint32
	// Tables holds the main generation, plus the rehash target when
	// Rehashing is set.
	Tables []TableStats
}

// TableStats describes one generation.
type TableStats struct {
	ID   int
	Size uint64
	Used uint64
	// Slots is the number of non-empty buckets.
	Slots uint64
	// MaxChainLen is the length of the longest chain.
	MaxChainLen int
	// TotalChainLen is the sum of the non-empty chain lengths, equal to
	// Used unless the counters are corrupt.
	TotalChainLen uint64
	// ChainLenHist counts buckets by chain length, the last slot counting
	// every chain of that length or longer.
	ChainLenHist [statsVectLen]uint64
}

// AvgChainLen returns the average length of the non-empty chains as
// counted by walking them.
func (s *TableStats) AvgChainLen() float64 {
	if s.Slots == 0 {
		return 0
	}
	return float64(s.TotalChainLen) / float64(s.Slots)
}

// AvgChainLenComputed returns the average chain length derived from the
// used counter.
func (s *TableStats) AvgChainLenComputed() float64 {
	if s.Slots == 0 {
		return 0
	}
	return float64(s.Used) / float64(s.Slots)
}

// ToString returns string representation of dict stats.
func (s *DictStats) ToString() string {
	var sb strings.Builder
	sb.WriteString("DictStats{\n")
	sb.WriteString(fmt.Sprintf("Size:          %d\n", s.Size))
	sb.WriteString(fmt.Sprintf("Slots:         %d\n", s.Slots))
	sb.WriteString(fmt.Sprintf("Rehashing:     %t\n", s.Rehashing))
	sb.WriteString(fmt.Sprintf("RehashIdx:     %d\n", s.RehashIdx))
	sb.WriteString(fmt.Sprintf("SafeIterators: %d\n", s.SafeIterators))
	sb.WriteString(fmt.Sprintf("ResizeEnabled: %t\n", s.ResizeEnabled))
	sb.WriteString(fmt.Sprintf("TotalGrowths:  %d\n", s.TotalGrowths))
	sb.WriteString(fmt.Sprintf("TotalShrinks:  %d\n", s.TotalShrinks))
	for i := range s.Tables {
		s.Tables[i].writeTo(&sb)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (s *TableStats) writeTo(sb *strings.Builder) {
	name := "main hash table"
	if s.ID == 1 {
		name = "rehashing target"
	}
	sb.WriteString(fmt.Sprintf("Hash table %d stats (%s):\n", s.ID, name))
	if s.Used == 0 {
		sb.WriteString(" No stats available for empty dictionaries\n")
		return
	}
	sb.WriteString(fmt.Sprintf(" table size: %d\n", s.Size))
	sb.WriteString(fmt.Sprintf(" number of elements: %d\n", s.Used))
	sb.WriteString(fmt.Sprintf(" different slots: %d\n", s.Slots))
	sb.WriteString(fmt.Sprintf(" max chain length: %d\n", s.MaxChainLen))
	sb.WriteString(fmt.Sprintf(" avg chain length (counted): %.02f\n", s.AvgChainLen()))
	sb.WriteString(fmt.Sprintf(" avg chain length (computed): %.02f\n", s.AvgChainLenComputed()))
	sb.WriteString(" Chain length distribution:\n")
	for i, n := range s.ChainLenHist {
		if n == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("   %s%d: %d (%.02f%%)\n",
			lastMark(i), i, n, float64(n)/float64(s.Size)*100))
	}
}

func lastMark(i int) string {
	if i == statsVectLen-1 {
		return ">= "
	}
	return ""
}
