// Package score implements the per-gene significance models for
// phenotype sequencing: a pooled Poisson-rate model and an unpooled
// distinct-sample binomial model, both with Bonferroni correction.
package score

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/phenoseq/phenoseq/internal/genome"
	"github.com/phenoseq/phenoseq/internal/mapping"
	"github.com/phenoseq/phenoseq/internal/snp"
)

// epsilonLambda floors a zero expected hit count so the Poisson and
// binomial tails stay computable. Genes with no measurable target size
// score as maximally implausible rather than dividing by zero. This is a
// deliberate design choice, not an error path.
const epsilonLambda = 1e-10

// GeneScore pairs a significance value with a gene identifier. Lower
// values mean stronger evidence of causal involvement.
type GeneScore struct {
	P      float64
	GeneID string
}

// Options configures the scoring models.
type Options struct {
	// Bonferroni multiplies each raw p-value by the number of tests,
	// capped at 1.0.
	Bonferroni bool
	// Tests overrides the number of tests used for Bonferroni scaling.
	// Zero means the number of genes in the grouping; supply the full
	// target-gene count when scoring against a larger candidate list.
	Tests int
	// GCWeight is the relative mutability of GC bases versus AT bases in
	// the pooled model's expectation. 1.0 weights every base equally
	// (plain length).
	GCWeight float64
}

// DefaultOptions returns the standard scoring configuration: Bonferroni
// on, equal base weighting.
func DefaultOptions() Options {
	return Options{Bonferroni: true, GCWeight: 1.0}
}

// Pooled scores genes under the pooled Poisson model. The genome-wide
// mutation rate implied by the total observed SNP count is distributed
// over genes in proportion to their composition-weighted target sizes;
// each gene's raw p-value is the upper Poisson tail P(X >= observed).
//
// Every gene present in hits must appear in geneComps; a missing gene
// means the grouping and the composition table came from different
// annotation sources, which is a caller bug and fails immediately.
func Pooled(hits mapping.GeneHits, genomeComp genome.Composition, geneComps map[string]genome.Composition, opts Options) ([]GeneScore, error) {
	if len(hits) == 0 {
		return nil, nil
	}

	genomeSize := weightedSize(genomeComp, opts.GCWeight)
	totalSNPs := float64(hits.TotalSNPs())

	scores := make([]GeneScore, 0, len(hits))
	for geneID, snps := range hits {
		comp, ok := geneComps[geneID]
		if !ok {
			return nil, fmt.Errorf("gene %q in SNP grouping but not in composition table", geneID)
		}

		var p float64
		if genomeSize <= 0 {
			// Degenerate genome: no basis for an expectation.
			p = 1.0
		} else {
			lambda := totalSNPs * weightedSize(comp, opts.GCWeight) / genomeSize
			if lambda <= 0 {
				lambda = epsilonLambda
			}
			p = poissonTail(len(snps), lambda)
		}
		scores = append(scores, GeneScore{P: p, GeneID: geneID})
	}

	finalize(scores, opts)
	return scores, nil
}

// PooledFromSources is the raw-source call shape of Pooled: it computes
// the genome-wide and per-gene compositions from the reference genome and
// annotation database instead of taking them precomputed.
func PooledFromSources(hits mapping.GeneHits, gen *genome.Genome, db CompositionSource, opts Options) ([]GeneScore, error) {
	geneComps, err := db.GeneCompositions(gen)
	if err != nil {
		return nil, err
	}
	return Pooled(hits, gen.Composition(), geneComps, opts)
}

// CompositionSource supplies per-gene base compositions from an
// annotation database.
type CompositionSource interface {
	GeneCompositions(gen *genome.Genome) (map[string]genome.Composition, error)
}

// Unpooled scores genes under the unpooled binomial model. The statistic
// per gene is the number of distinct samples in which the gene was hit,
// taken from the "tag" attribute of its SNPs; SNPs without a tag each
// count as their own sample. The null is Binomial(nSamples, geneSize/
// exomeSize).
//
// nSamples <= 0 or exomeSize <= 0 yields a p-value of 1.0 for every gene
// (defined limiting behavior). A gene missing from geneSizes fails
// immediately, as in Pooled.
func Unpooled(hits mapping.GeneHits, nSamples int, exomeSize int64, geneSizes map[string]int64, opts Options) ([]GeneScore, error) {
	if len(hits) == 0 {
		return nil, nil
	}

	scores := make([]GeneScore, 0, len(hits))
	for geneID, snps := range hits {
		size, ok := geneSizes[geneID]
		if !ok {
			return nil, fmt.Errorf("gene %q in SNP grouping but not in gene size table", geneID)
		}

		var p float64
		if nSamples <= 0 || exomeSize <= 0 {
			p = 1.0
		} else {
			pGene := float64(size) / float64(exomeSize)
			if pGene <= 0 {
				pGene = epsilonLambda
			}
			if pGene > 1 {
				pGene = 1
			}
			p = binomialTail(distinctSamples(snps), nSamples, pGene)
		}
		scores = append(scores, GeneScore{P: p, GeneID: geneID})
	}

	finalize(scores, opts)
	return scores, nil
}

// distinctSamples counts the unique sample tags among a gene's SNPs.
// Untagged SNPs are each treated as an independent sample, preserving
// raw hit counts for untagged data.
func distinctSamples(snps []*snp.SNP) int {
	tags := make(map[string]bool)
	untagged := 0
	for _, s := range snps {
		tag := s.String("tag", "")
		if tag == "" {
			untagged++
			continue
		}
		tags[tag] = true
	}
	return len(tags) + untagged
}

// finalize applies Bonferroni correction and the deterministic ordering:
// ascending p-value, ties broken by gene identifier.
func finalize(scores []GeneScore, opts Options) {
	if opts.Bonferroni {
		tests := opts.Tests
		if tests <= 0 {
			tests = len(scores)
		}
		for i := range scores {
			scores[i].P *= float64(tests)
			if scores[i].P > 1 {
				scores[i].P = 1
			}
		}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].P != scores[j].P {
			return scores[i].P < scores[j].P
		}
		return scores[i].GeneID < scores[j].GeneID
	})
}

// weightedSize returns the composition-weighted target size: AT bases
// count 1, GC bases count gcWeight.
func weightedSize(comp genome.Composition, gcWeight float64) float64 {
	if gcWeight <= 0 {
		gcWeight = 1
	}
	return gcWeight*float64(comp.GC) + float64(comp.AT)
}

// poissonTail returns P(X >= k) for X ~ Poisson(lambda).
func poissonTail(k int, lambda float64) float64 {
	if k <= 0 {
		return 1
	}
	dist := distuv.Poisson{Lambda: lambda}
	return dist.Survival(float64(k) - 1)
}

// binomialTail returns P(X >= k) for X ~ Binomial(n, p).
func binomialTail(k, n int, p float64) float64 {
	if k <= 0 {
		return 1
	}
	dist := distuv.Binomial{N: float64(n), P: p}
	return dist.Survival(float64(k) - 1)
}
