// Package pipeline wires the phenotype-sequencing stages together:
// filter SNPs, map them to genes, optionally narrow to protein-altering
// hits, and score.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/phenoseq/phenoseq/internal/annotation"
	"github.com/phenoseq/phenoseq/internal/filter"
	"github.com/phenoseq/phenoseq/internal/genome"
	"github.com/phenoseq/phenoseq/internal/mapping"
	"github.com/phenoseq/phenoseq/internal/score"
	"github.com/phenoseq/phenoseq/internal/snp"
)

// Model selects the scoring model.
type Model string

const (
	// ModelPooled scores pooled libraries with the Poisson rate model.
	ModelPooled Model = "pooled"
	// ModelUnpooled scores separately sequenced libraries with the
	// distinct-sample binomial model.
	ModelUnpooled Model = "unpooled"
)

// Config holds the per-run scoring configuration.
type Config struct {
	Model      Model
	Bonferroni bool
	Tests      int     // Bonferroni test count override, 0 = genes in grouping
	GCWeight   float64 // pooled model GC mutability weight, 1.0 = plain length
	NonSynOnly bool    // narrow to protein-altering SNPs before scoring
	Samples    int     // unpooled model: total sample count
	ExomeSize  int64   // unpooled model: 0 = total annotated target size
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig() Config {
	return Config{
		Model:      ModelPooled,
		Bonferroni: true,
		GCWeight:   1.0,
	}
}

// Pipeline runs the scoring stages against one annotation database and,
// optionally, a reference genome for composition-aware normalization.
// Both are shared read-only across runs.
type Pipeline struct {
	db     *annotation.DB
	gen    *genome.Genome
	logger *zap.Logger
}

// New creates a pipeline over an annotation database.
func New(db *annotation.DB) *Pipeline {
	return &Pipeline{
		db:     db,
		logger: zap.NewNop(),
	}
}

// SetGenome supplies a reference genome. Without one, the pooled model
// falls back to raw target lengths instead of base composition.
func (p *Pipeline) SetGenome(gen *genome.Genome) {
	p.gen = gen
}

// SetLogger sets the logger for progress and diagnostic messages.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Run filters, maps, and scores the given SNPs. A nil predicate skips
// filtering. The returned grouping is the one the scores were computed
// from, for hit-count reporting.
func (p *Pipeline) Run(snps []*snp.SNP, pred filter.Predicate, cfg Config) ([]score.GeneScore, mapping.GeneHits, error) {
	if pred != nil {
		before := len(snps)
		snps = filter.Apply(snps, pred)
		p.logger.Info("filtered SNPs",
			zap.Int("before", before),
			zap.Int("after", len(snps)))
	}

	hits, err := p.mapSNPs(snps)
	if err != nil {
		return nil, nil, err
	}
	p.logger.Info("mapped SNPs to genes",
		zap.Int("genes", len(hits)),
		zap.Int("hits", hits.TotalSNPs()))

	if cfg.NonSynOnly {
		hits = mapping.NonSynonymous(hits)
		p.logger.Info("kept protein-altering hits", zap.Int("genes", len(hits)))
	}

	scores, err := p.score(hits, cfg)
	if err != nil {
		return nil, nil, err
	}
	return scores, hits, nil
}

// mapSNPs picks the mapping strategy from the shape of the annotation:
// exon-level mapping when the database carries exon structure, plain
// gene-interval mapping otherwise.
func (p *Pipeline) mapSNPs(snps []*snp.SNP) (mapping.GeneHits, error) {
	owners := p.db.ExonOwners()
	if len(owners) > 0 {
		return mapping.MapToExons(snps, p.db, owners)
	}
	return mapping.MapToGenes(snps, p.db), nil
}

func (p *Pipeline) score(hits mapping.GeneHits, cfg Config) ([]score.GeneScore, error) {
	opts := score.Options{
		Bonferroni: cfg.Bonferroni,
		Tests:      cfg.Tests,
		GCWeight:   cfg.GCWeight,
	}

	switch cfg.Model {
	case ModelPooled, "":
		if p.gen != nil {
			return score.PooledFromSources(hits, p.gen, p.db, opts)
		}
		// No genome: treat each gene's raw length as its composition so
		// the expectation reduces to length-proportional.
		genomeComp := genome.Composition{AT: p.db.TotalTargetSize()}
		geneComps := make(map[string]genome.Composition)
		for id, size := range p.db.TargetSizes() {
			geneComps[id] = genome.Composition{AT: size}
		}
		return score.Pooled(hits, genomeComp, geneComps, opts)

	case ModelUnpooled:
		exome := cfg.ExomeSize
		if exome == 0 {
			exome = p.db.TotalTargetSize()
		}
		return score.Unpooled(hits, cfg.Samples, exome, p.db.TargetSizes(), opts)

	default:
		return nil, fmt.Errorf("unknown scoring model %q", cfg.Model)
	}
}
