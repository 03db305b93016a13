// Package annotation provides gene interval structures and the
// interval-indexed annotation database used for SNP-to-gene mapping.
package annotation

import "sort"

// Exon represents a single annotated exon interval within a gene.
type Exon struct {
	ID    string // Exon identifier (unique within the database)
	Start int64  // Genomic start (1-based)
	End   int64  // Genomic end (1-based, inclusive)
}

// Gene represents an annotated gene: an identifier plus one or more
// genomic intervals. Simple genomes carry a single [Start, End] interval
// and no exons; complex genomes carry the exon intervals merged from all
// transcripts of the gene.
type Gene struct {
	ID     string // Gene identifier (e.g., locus tag or Ensembl ID)
	Name   string // Gene symbol, may be empty
	Chrom  string // Chromosome/contig
	Start  int64  // Gene start position (1-based)
	End    int64  // Gene end position (1-based, inclusive)
	Strand int8   // +1 (forward) or -1 (reverse)
	Exons  []Exon // Exon intervals, empty for single-interval genes
}

// Contains returns true if the given position is within the gene boundaries.
func (g *Gene) Contains(pos int64) bool {
	return pos >= g.Start && pos <= g.End
}

// Footprint returns the gene's merged exonic intervals: overlapping exons
// across transcripts are collapsed so that each base counts once. For a
// gene without exon structure the footprint is the single gene interval.
func (g *Gene) Footprint() []Exon {
	if len(g.Exons) == 0 {
		return []Exon{{Start: g.Start, End: g.End}}
	}

	exons := make([]Exon, len(g.Exons))
	copy(exons, g.Exons)
	sort.Slice(exons, func(i, j int) bool {
		if exons[i].Start != exons[j].Start {
			return exons[i].Start < exons[j].Start
		}
		return exons[i].End < exons[j].End
	})

	merged := exons[:1]
	for _, e := range exons[1:] {
		last := &merged[len(merged)-1]
		if e.Start <= last.End+1 {
			if e.End > last.End {
				last.End = e.End
			}
			continue
		}
		merged = append(merged, e)
	}
	return merged
}

// TargetSize returns the gene's effective target size: the total length
// of its merged exonic footprint.
func (g *Gene) TargetSize() int64 {
	var size int64
	for _, e := range g.Footprint() {
		size += e.End - e.Start + 1
	}
	return size
}
