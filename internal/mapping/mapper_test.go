package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenoseq/phenoseq/internal/annotation"
	"github.com/phenoseq/phenoseq/internal/snp"
)

func snpAt(chrom string, pos int64) *snp.SNP {
	return &snp.SNP{Chrom: chrom, Pos: pos, Ref: "A", Alt: "G"}
}

func testDB() *annotation.DB {
	db := annotation.New()
	db.AddGene(&annotation.Gene{ID: "geneA", Chrom: "1", Start: 100, End: 300})
	db.AddGene(&annotation.Gene{ID: "geneB", Chrom: "1", Start: 250, End: 500})
	db.AddGene(&annotation.Gene{ID: "geneC", Chrom: "2", Start: 100, End: 200,
		Exons: []annotation.Exon{
			{ID: "C.e1", Start: 100, End: 130},
			{ID: "C.e2", Start: 160, End: 200},
		}})
	return db
}

func TestMapToGenes_GroupsByGene(t *testing.T) {
	db := testDB()
	snps := []*snp.SNP{
		snpAt("1", 150), // geneA only
		snpAt("1", 400), // geneB only
		snpAt("1", 160), // geneA only
	}

	hits := MapToGenes(snps, db)

	require.Len(t, hits, 2)
	assert.Len(t, hits["geneA"], 2)
	assert.Len(t, hits["geneB"], 1)
	assert.Equal(t, 3, hits.TotalSNPs())
}

func TestMapToGenes_IntergenicDropped(t *testing.T) {
	db := testDB()

	hits := MapToGenes([]*snp.SNP{snpAt("1", 50), snpAt("3", 100)}, db)
	assert.Empty(t, hits, "SNPs outside every gene map nowhere")
}

func TestMapToGenes_OverlappingGenesCountEach(t *testing.T) {
	db := testDB()
	s := snpAt("1", 275) // inside both geneA and geneB

	hits := MapToGenes([]*snp.SNP{s}, db)

	require.Len(t, hits, 2)
	assert.Same(t, s, hits["geneA"][0], "same record referenced, not copied")
	assert.Same(t, s, hits["geneB"][0])
	assert.Equal(t, 2, hits.TotalSNPs(), "one hit per overlapped gene")
}

func TestMapToGenes_ChrPrefixNormalized(t *testing.T) {
	db := testDB()

	hits := MapToGenes([]*snp.SNP{snpAt("chr1", 150)}, db)
	assert.Len(t, hits["geneA"], 1)
}

func TestMapToExons_TranslatesToGene(t *testing.T) {
	db := testDB()
	snps := []*snp.SNP{
		snpAt("2", 120), // exon C.e1
		snpAt("2", 145), // intronic: in gene span, outside exons
		snpAt("2", 180), // exon C.e2
	}

	hits, err := MapToExons(snps, db, db.ExonOwners())
	require.NoError(t, err)

	require.Len(t, hits, 1)
	assert.Len(t, hits["geneC"], 2, "intronic SNP dropped")
}

func TestMapToExons_MissingOwnerIsError(t *testing.T) {
	db := testDB()

	_, err := MapToExons([]*snp.SNP{snpAt("2", 120)}, db, map[string]string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "C.e1")
}

func TestMapToExons_OneHitPerGenePerSNP(t *testing.T) {
	// Two overlapping exon annotations of the same gene at one position.
	db := annotation.New()
	db.AddGene(&annotation.Gene{ID: "g", Chrom: "1", Start: 100, End: 300,
		Exons: []annotation.Exon{
			{ID: "e1", Start: 100, End: 200},
			{ID: "e2", Start: 150, End: 250},
		}})

	hits, err := MapToExons([]*snp.SNP{snpAt("1", 175)}, db, db.ExonOwners())
	require.NoError(t, err)
	assert.Len(t, hits["g"], 1, "exon multiplicity collapses within a gene")
}
