// Package genome provides reference sequence storage and base-composition
// counting for mutation-rate normalization.
package genome

import "fmt"

// Composition holds GC and AT base counts over a stretch of sequence.
type Composition struct {
	GC int64
	AT int64
}

// Add returns the element-wise sum of two compositions.
func (c Composition) Add(other Composition) Composition {
	return Composition{GC: c.GC + other.GC, AT: c.AT + other.AT}
}

// Total returns the number of unambiguous bases counted.
func (c Composition) Total() int64 {
	return c.GC + c.AT
}

// CountBases counts GC and AT bases in a sequence. Ambiguity codes (N and
// friends) count toward neither.
func CountBases(seq string) Composition {
	var comp Composition
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case 'G', 'C', 'g', 'c':
			comp.GC++
		case 'A', 'T', 'a', 't':
			comp.AT++
		}
	}
	return comp
}

// Genome stores reference sequences by contig name. It is read-only after
// loading; mapping and scoring share it without copying.
type Genome struct {
	seqs map[string]string
}

// New creates a new empty genome.
func New() *Genome {
	return &Genome{seqs: make(map[string]string)}
}

// AddSequence adds a contig sequence. Chromosome names are normalized
// (leading "chr" stripped).
func (g *Genome) AddSequence(name, seq string) {
	g.seqs[normalizeChrom(name)] = seq
}

// Sequence returns the full sequence for a contig.
func (g *Genome) Sequence(name string) (string, bool) {
	seq, ok := g.seqs[normalizeChrom(name)]
	return seq, ok
}

// Subsequence returns the 1-based inclusive [start, end] slice of a contig.
func (g *Genome) Subsequence(name string, start, end int64) (string, error) {
	seq, ok := g.seqs[normalizeChrom(name)]
	if !ok {
		return "", fmt.Errorf("contig %q not in genome", name)
	}
	if start < 1 || end > int64(len(seq)) || start > end {
		return "", fmt.Errorf("range %d-%d out of bounds for contig %q (length %d)",
			start, end, name, len(seq))
	}
	return seq[start-1 : end], nil
}

// Composition returns genome-wide GC/AT counts over all contigs.
func (g *Genome) Composition() Composition {
	var comp Composition
	for _, seq := range g.seqs {
		comp = comp.Add(CountBases(seq))
	}
	return comp
}

// TotalLength returns the summed length of all contigs.
func (g *Genome) TotalLength() int64 {
	var total int64
	for _, seq := range g.seqs {
		total += int64(len(seq))
	}
	return total
}

// ContigCount returns the number of contigs loaded.
func (g *Genome) ContigCount() int {
	return len(g.seqs)
}

func normalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}
