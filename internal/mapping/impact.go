package mapping

import "github.com/phenoseq/phenoseq/internal/snp"

// proteinAltering lists the consequence classifications that change the
// encoded protein. Matches the terms attached by the consequence
// annotation hook.
var proteinAltering = map[string]bool{
	"missense_variant":   true,
	"stop_gained":        true,
	"stop_lost":          true,
	"start_lost":         true,
	"frameshift_variant": true,
}

// IsProteinAltering reports whether a consequence term alters the protein.
func IsProteinAltering(consequence string) bool {
	return proteinAltering[consequence]
}

// NonSynonymous narrows a grouping to SNPs whose "consequence" attribute
// indicates a protein-altering mutation. Genes whose list becomes empty
// are dropped, preserving the sparse invariant. SNPs without a consequence
// attribute are excluded. Idempotent.
func NonSynonymous(hits GeneHits) GeneHits {
	out := make(GeneHits)
	for gene, snps := range hits {
		var kept []*snp.SNP
		for _, s := range snps {
			if IsProteinAltering(s.String("consequence", "")) {
				kept = append(kept, s)
			}
		}
		if len(kept) > 0 {
			out[gene] = kept
		}
	}
	return out
}
