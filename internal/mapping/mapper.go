// Package mapping resolves SNP coordinates against gene annotations,
// producing the gene-to-SNPs groupings consumed by the scorers.
package mapping

import (
	"fmt"

	"github.com/phenoseq/phenoseq/internal/annotation"
	"github.com/phenoseq/phenoseq/internal/snp"
)

// GeneHits maps gene identifiers to the SNPs observed within that gene.
// The mapping is sparse: a gene with no hits never appears as a key.
type GeneHits map[string][]*snp.SNP

// TotalSNPs returns the number of SNP hits summed over all genes. A SNP
// overlapping two genes contributes one hit to each.
func (h GeneHits) TotalSNPs() int {
	total := 0
	for _, snps := range h {
		total += len(snps)
	}
	return total
}

// GeneLookup finds the genes whose spans contain a genomic position.
// annotation.DB satisfies this for single-interval gene models.
type GeneLookup interface {
	FindGenes(chrom string, pos int64) []*annotation.Gene
}

// ExonLookup finds the exon identifiers containing a genomic position.
// annotation.DB satisfies this for multi-exon gene models.
type ExonLookup interface {
	FindExons(chrom string, pos int64) []string
}

// MapToGenes groups SNPs by the genes whose intervals contain them. A SNP
// outside every annotated gene is dropped; a SNP inside overlapping gene
// models is appended to every overlapped gene's list, one hit per gene.
func MapToGenes(snps []*snp.SNP, lookup GeneLookup) GeneHits {
	hits := make(GeneHits)
	for _, s := range snps {
		for _, g := range lookup.FindGenes(s.NormalizeChrom(), s.Pos) {
			hits[g.ID] = append(hits[g.ID], s)
		}
	}
	return hits
}

// MapToExons groups SNPs by merged gene via exon-level overlap: the
// overlap query yields exon identifiers, each translated to its owning
// gene through exonToGene. A SNP hitting several exons of the same gene
// (overlapping transcript models) counts once for that gene. An exon
// identifier absent from the table is a caller wiring error.
func MapToExons(snps []*snp.SNP, lookup ExonLookup, exonToGene map[string]string) (GeneHits, error) {
	hits := make(GeneHits)
	for _, s := range snps {
		seen := make(map[string]bool)
		for _, exonID := range lookup.FindExons(s.NormalizeChrom(), s.Pos) {
			geneID, ok := exonToGene[exonID]
			if !ok {
				return nil, fmt.Errorf("exon %q at %s:%d has no owning gene in translation table",
					exonID, s.Chrom, s.Pos)
			}
			if seen[geneID] {
				continue
			}
			seen[geneID] = true
			hits[geneID] = append(hits[geneID], s)
		}
	}
	return hits, nil
}
