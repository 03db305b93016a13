package snp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttrAccessors_Defaults(t *testing.T) {
	s := &SNP{Chrom: "1", Pos: 10, Ref: "A", Alt: "T"}

	assert.Equal(t, 0.5, s.Float("af", 0.5), "missing float attr returns default")
	assert.Equal(t, 3, s.Int("replicates", 3), "missing int attr returns default")
	assert.Equal(t, "na", s.String("consequence", "na"))
	assert.False(t, s.HasAttr("af"))
}

func TestAttrAccessors_CaseInsensitive(t *testing.T) {
	s := &SNP{Chrom: "1", Pos: 10, Ref: "A", Alt: "T"}
	s.SetAttr("AF", 0.3)

	assert.True(t, s.HasAttr("af"))
	assert.True(t, s.HasAttr("AF"))
	assert.Equal(t, 0.3, s.Float("af", -1))
}

func TestFloats_ParsesCommaSeparated(t *testing.T) {
	s := &SNP{Attrs: map[string]interface{}{"strand_pvals": "0.01,0.02"}}

	assert.Equal(t, []float64{0.01, 0.02}, s.Floats("strand_pvals"))
	assert.Nil(t, s.Floats("missing"))
}

func TestAddAttrs_AttachesDerivedFields(t *testing.T) {
	snps := []*SNP{
		{Chrom: "1", Pos: 10, Ref: "A", Alt: "T"},
		{Chrom: "1", Pos: 20, Ref: "C", Alt: "G"},
	}

	AddAttrs(snps, func(s *SNP) map[string]interface{} {
		if s.Pos == 10 {
			return map[string]interface{}{"consequence": "missense_variant"}
		}
		return nil
	})

	assert.Equal(t, "missense_variant", snps[0].String("consequence", ""))
	assert.False(t, snps[1].HasAttr("consequence"))
}

func TestSplitMultiAllelic_IndependentAttrs(t *testing.T) {
	s := &SNP{Chrom: "1", Pos: 10, Ref: "A", Alt: "G,T",
		Attrs: map[string]interface{}{"af": 0.4}}

	splits := SplitMultiAllelic(s)
	assert.Len(t, splits, 2)
	assert.Equal(t, "G", splits[0].Alt)
	assert.Equal(t, "T", splits[1].Alt)

	// Parsed INFO is carried into each split.
	assert.Equal(t, 0.4, splits[0].Float("af", -1))
	assert.Equal(t, 0.4, splits[1].Float("af", -1))

	// Per-allele enrichment on one split must not reach its sibling.
	splits[0].SetAttr("consequence", "missense_variant")
	assert.Equal(t, "missense_variant", splits[0].String("consequence", ""))
	assert.False(t, splits[1].HasAttr("consequence"))
	assert.False(t, s.HasAttr("consequence"))
}

func TestSplitMultiAllelic_SingleAllele(t *testing.T) {
	s := &SNP{Chrom: "1", Pos: 10, Ref: "A", Alt: "T"}
	splits := SplitMultiAllelic(s)

	assert.Len(t, splits, 1)
	assert.Same(t, s, splits[0], "single-allele records pass through")
}
