package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenoseq/phenoseq/internal/annotation"
	"github.com/phenoseq/phenoseq/internal/filter"
	"github.com/phenoseq/phenoseq/internal/genome"
	"github.com/phenoseq/phenoseq/internal/snp"
)

func simpleDB() *annotation.DB {
	db := annotation.New()
	db.AddGene(&annotation.Gene{ID: "hot", Chrom: "1", Start: 1, End: 100})
	db.AddGene(&annotation.Gene{ID: "cold", Chrom: "1", Start: 201, End: 800})
	return db
}

func snpAt(pos int64, qual float64) *snp.SNP {
	return &snp.SNP{Chrom: "1", Pos: pos, Ref: "A", Alt: "G", Qual: qual}
}

func TestRun_PooledEndToEnd(t *testing.T) {
	p := New(simpleDB())

	snps := []*snp.SNP{
		snpAt(10, 99), snpAt(20, 99), snpAt(30, 99), snpAt(40, 99), // hot
		snpAt(300, 99), // cold
		snpAt(150, 99), // intergenic
		snpAt(50, 1),   // fails quality
	}

	cfg := DefaultConfig()
	cfg.Bonferroni = false

	scores, hits, err := p.Run(snps, filter.MinQual(20), cfg)
	require.NoError(t, err)

	require.Len(t, scores, 2)
	assert.Equal(t, "hot", scores[0].GeneID, "dense small gene ranks first")
	assert.Less(t, scores[0].P, scores[1].P)

	assert.Len(t, hits["hot"], 4)
	assert.Len(t, hits["cold"], 1)
}

func TestRun_NilPredicateSkipsFiltering(t *testing.T) {
	p := New(simpleDB())

	scores, hits, err := p.Run([]*snp.SNP{snpAt(10, 0)}, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, scores, 1)
	assert.Len(t, hits["hot"], 1)
}

func TestRun_ExonShapeSelectsExonMapping(t *testing.T) {
	db := annotation.New()
	db.AddGene(&annotation.Gene{ID: "g", Chrom: "1", Start: 1, End: 100,
		Exons: []annotation.Exon{{ID: "e1", Start: 1, End: 40}}})
	p := New(db)

	// Position 60 is inside the gene span but outside the exon.
	scores, _, err := p.Run([]*snp.SNP{snpAt(60, 99)}, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, scores, "exon-level mapping drops intronic SNP")

	scores, _, err = p.Run([]*snp.SNP{snpAt(20, 99)}, nil, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, scores, 1)
}

func TestRun_MixedAnnotationShape(t *testing.T) {
	// Exon-structured and bare genes side by side: exon-level mapping is
	// selected, and hits on the bare gene's span must still land.
	db := annotation.New()
	db.AddGene(&annotation.Gene{ID: "coding", Chrom: "1", Start: 1, End: 100,
		Exons: []annotation.Exon{{ID: "e1", Start: 1, End: 40}}})
	db.AddGene(&annotation.Gene{ID: "bare", Chrom: "1", Start: 201, End: 300})
	p := New(db)

	scores, hits, err := p.Run([]*snp.SNP{
		snpAt(20, 99),  // inside coding's exon
		snpAt(60, 99),  // intronic in coding
		snpAt(250, 99), // inside bare gene
	}, nil, DefaultConfig())
	require.NoError(t, err)

	require.Len(t, scores, 2)
	assert.Len(t, hits["coding"], 1, "intronic SNP dropped")
	assert.Len(t, hits["bare"], 1, "bare gene reachable in mixed annotation")
}

func TestRun_UnpooledModel(t *testing.T) {
	p := New(simpleDB())

	tagged := func(pos int64, tag string) *snp.SNP {
		s := snpAt(pos, 99)
		s.SetAttr("tag", tag)
		return s
	}

	cfg := DefaultConfig()
	cfg.Model = ModelUnpooled
	cfg.Samples = 10

	scores, _, err := p.Run([]*snp.SNP{
		tagged(10, "s1"), tagged(20, "s2"), tagged(30, "s1"),
	}, nil, cfg)
	require.NoError(t, err)

	require.Len(t, scores, 1)
	assert.Greater(t, scores[0].P, 0.0)
	assert.Less(t, scores[0].P, 1.0)
}

func TestRun_PooledWithGenomeComposition(t *testing.T) {
	db := annotation.New()
	db.AddGene(&annotation.Gene{ID: "g", Chrom: "1", Start: 1, End: 4})

	gen := genome.New()
	gen.AddSequence("1", "GCGCATATATAT")

	p := New(db)
	p.SetGenome(gen)

	cfg := DefaultConfig()
	cfg.Bonferroni = false
	cfg.GCWeight = 2.0

	scores, _, err := p.Run([]*snp.SNP{snpAt(2, 99)}, nil, cfg)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Greater(t, scores[0].P, 0.0)
	assert.Less(t, scores[0].P, 1.0)
}

func TestRun_NonSynOnly(t *testing.T) {
	p := New(simpleDB())

	missense := snpAt(10, 99)
	missense.SetAttr("consequence", "missense_variant")
	silent := snpAt(300, 99)
	silent.SetAttr("consequence", "synonymous_variant")

	cfg := DefaultConfig()
	cfg.NonSynOnly = true

	scores, hits, err := p.Run([]*snp.SNP{missense, silent}, nil, cfg)
	require.NoError(t, err)

	require.Len(t, scores, 1)
	assert.Equal(t, "hot", scores[0].GeneID)
	assert.NotContains(t, hits, "cold")
}

func TestRun_UnknownModel(t *testing.T) {
	p := New(simpleDB())
	cfg := DefaultConfig()
	cfg.Model = "bayesian"

	_, _, err := p.Run([]*snp.SNP{snpAt(10, 99)}, nil, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bayesian")
}
