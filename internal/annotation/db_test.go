package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenoseq/phenoseq/internal/genome"
)

func testDB() *DB {
	db := New()
	db.AddGene(&Gene{ID: "geneA", Chrom: "1", Start: 100, End: 300, Strand: 1})
	db.AddGene(&Gene{ID: "geneB", Chrom: "1", Start: 250, End: 500, Strand: -1})
	db.AddGene(&Gene{ID: "geneC", Chrom: "2", Start: 100, End: 200, Strand: 1,
		Exons: []Exon{
			{ID: "C.e1", Start: 100, End: 130},
			{ID: "C.e2", Start: 160, End: 200},
		}})
	return db
}

func TestFindGenes_Overlap(t *testing.T) {
	db := testDB()

	genes := db.FindGenes("1", 150)
	require.Len(t, genes, 1)
	assert.Equal(t, "geneA", genes[0].ID)

	// Position inside both overlapping gene models
	genes = db.FindGenes("1", 275)
	assert.Len(t, genes, 2)

	assert.Empty(t, db.FindGenes("1", 50), "intergenic position")
	assert.Empty(t, db.FindGenes("99", 150), "unknown chromosome")
}

func TestFindGenes_ChromNormalization(t *testing.T) {
	db := New()
	db.AddGene(&Gene{ID: "g", Chrom: "chr5", Start: 10, End: 20})

	assert.Len(t, db.FindGenes("5", 15), 1)
	assert.Len(t, db.FindGenes("chr5", 15), 1)
}

func TestFindExons(t *testing.T) {
	db := testDB()

	assert.Equal(t, []string{"C.e1"}, db.FindExons("2", 120))
	assert.Empty(t, db.FindExons("2", 145), "intronic position")
}

func TestExonOwners(t *testing.T) {
	db := testDB()
	owners := db.ExonOwners()

	assert.Equal(t, "geneC", owners["C.e1"])
	assert.Equal(t, "geneC", owners["C.e2"])
	assert.Equal(t, "geneA", owners["geneA.span"], "bare genes get synthetic spans in a mixed annotation")
	assert.Equal(t, "geneB", owners["geneB.span"])
	assert.Len(t, owners, 4)
}

func TestMixedAnnotation_BareGenesReachableViaExons(t *testing.T) {
	// Bare genes alongside exon-structured ones must stay reachable
	// through the exon index: their full span is a synthetic exon with
	// an entry in the translation table.
	db := testDB()

	ids := db.FindExons("1", 150)
	require.Len(t, ids, 1)
	assert.Equal(t, "geneA.span", ids[0])
	assert.Equal(t, "geneA", db.ExonOwners()[ids[0]])

	// Intergenic positions still map nowhere.
	assert.Empty(t, db.FindExons("1", 50))
}

func TestExonOwners_NoExonStructure(t *testing.T) {
	db := New()
	db.AddGene(&Gene{ID: "a", Chrom: "1", Start: 100, End: 200})
	db.AddGene(&Gene{ID: "b", Chrom: "1", Start: 300, End: 400})

	assert.Empty(t, db.ExonOwners(), "no synthetic spans without exon structure")
	assert.Empty(t, db.FindExons("1", 150))
}

func TestTargetSizes(t *testing.T) {
	db := testDB()
	sizes := db.TargetSizes()

	assert.Equal(t, int64(201), sizes["geneA"], "single interval: End-Start+1")
	assert.Equal(t, int64(72), sizes["geneC"], "exonic footprint only")
	assert.Equal(t, int64(201+251+72), db.TotalTargetSize())
}

func TestFootprint_MergesOverlappingExons(t *testing.T) {
	g := &Gene{ID: "g", Chrom: "1", Start: 100, End: 400, Exons: []Exon{
		{ID: "e1", Start: 100, End: 200},
		{ID: "e2", Start: 150, End: 250}, // overlaps e1 across transcripts
		{ID: "e3", Start: 300, End: 400},
	}}

	fp := g.Footprint()
	require.Len(t, fp, 2)
	assert.Equal(t, int64(100), fp[0].Start)
	assert.Equal(t, int64(250), fp[0].End)
	assert.Equal(t, int64(151+101), g.TargetSize(), "each base counted once")
}

func TestGeneIDs_Sorted(t *testing.T) {
	db := testDB()
	assert.Equal(t, []string{"geneA", "geneB", "geneC"}, db.GeneIDs())
	assert.Equal(t, 3, db.GeneCount())
}

func TestGeneCompositions(t *testing.T) {
	db := New()
	db.AddGene(&Gene{ID: "g", Chrom: "1", Start: 3, End: 8})

	gen := genome.New()
	//                 123456789
	gen.AddSequence("1", "AAGCGCTTA")

	comps, err := db.GeneCompositions(gen)
	require.NoError(t, err)
	assert.Equal(t, genome.Composition{GC: 4, AT: 2}, comps["g"])
}

func TestGeneCompositions_MissingContig(t *testing.T) {
	db := New()
	db.AddGene(&Gene{ID: "g", Chrom: "7", Start: 1, End: 10})

	_, err := db.GeneCompositions(genome.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gene g")
}
