package filter

import (
	"fmt"

	"github.com/phenoseq/phenoseq/internal/snp"
)

// ReplicateCounter reports, for a genomic position, how many replicate
// datasets contain a call at that position.
type ReplicateCounter interface {
	CountDatasetsAt(chrom string, pos int64) (int, error)
}

// MinReplicates requires a SNP to have been called in at least n replicate
// datasets at the same chromosome and position. Chromosome names are
// normalized so that "chr1" and "1" style inputs agree. Counter errors are
// treated as non-matches, consistent with the package's missing-attribute
// policy.
func MinReplicates(counter ReplicateCounter, n int) Predicate {
	return func(s *snp.SNP) bool {
		count, err := counter.CountDatasetsAt(s.NormalizeChrom(), s.Pos)
		if err != nil {
			return false
		}
		return count >= n
	}
}

// ReplicateSet is an in-memory ReplicateCounter built from parsed
// replicate SNP sets.
type ReplicateSet struct {
	counts map[string]int
}

// NewReplicateSet builds a counter from one SNP slice per replicate
// dataset. A position counts once per dataset regardless of how many
// alleles that dataset called there.
func NewReplicateSet(replicates ...[]*snp.SNP) *ReplicateSet {
	counts := make(map[string]int)
	for _, rep := range replicates {
		seen := make(map[string]bool)
		for _, s := range rep {
			key := posKey(s.Chrom, s.Pos)
			if !seen[key] {
				seen[key] = true
				counts[key]++
			}
		}
	}
	return &ReplicateSet{counts: counts}
}

// CountDatasetsAt implements ReplicateCounter.
func (r *ReplicateSet) CountDatasetsAt(chrom string, pos int64) (int, error) {
	return r.counts[posKey(chrom, pos)], nil
}

func posKey(chrom string, pos int64) string {
	return fmt.Sprintf("%s:%d", snp.NormalizeChrom(chrom), pos)
}
