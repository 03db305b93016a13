// Package snp provides SNP records and VCF parsing for phenotype sequencing.
package snp

import (
	"strconv"
	"strings"
)

// SNP represents a single called variant. The core VCF columns are typed
// fields; everything else (caller INFO fields plus derived attributes such
// as consequence or library tag) lives in Attrs, keyed by lower-case name.
type SNP struct {
	Chrom  string                 // Chromosome/contig name (e.g., "NC_000913", "chr12")
	Pos    int64                  // 1-based genomic position
	ID     string                 // Variant identifier (e.g., rs ID), "." if absent
	Ref    string                 // Reference allele
	Alt    string                 // Alternate allele (single allele after splitting)
	Qual   float64                // Caller quality score
	Filter string                 // Filter status (PASS or filter name)
	Attrs  map[string]interface{} // INFO fields and derived attributes
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (s *SNP) IsSNV() bool {
	return len(s.Ref) == 1 && len(s.Alt) == 1
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (s *SNP) NormalizeChrom() string {
	return NormalizeChrom(s.Chrom)
}

// NormalizeChrom strips a leading "chr" prefix so that VCF, annotation,
// and stored-call naming conventions interoperate.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}

// SetAttr attaches a derived attribute. Names are normalized to lower-case.
func (s *SNP) SetAttr(name string, value interface{}) {
	if s.Attrs == nil {
		s.Attrs = make(map[string]interface{})
	}
	s.Attrs[strings.ToLower(name)] = value
}

// HasAttr reports whether the named attribute is present.
func (s *SNP) HasAttr(name string) bool {
	_, ok := s.Attrs[strings.ToLower(name)]
	return ok
}

// Float returns the named attribute as a float64, or def if the attribute
// is absent or not convertible. String-valued INFO fields are parsed.
func (s *SNP) Float(name string, def float64) float64 {
	v, ok := s.Attrs[strings.ToLower(name)]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	}
	return def
}

// Int returns the named attribute as an int, or def if absent or not
// convertible.
func (s *SNP) Int(name string, def int) int {
	v, ok := s.Attrs[strings.ToLower(name)]
	if !ok {
		return def
	}
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case string:
		if n, err := strconv.Atoi(x); err == nil {
			return n
		}
	}
	return def
}

// String returns the named attribute as a string, or def if absent.
func (s *SNP) String(name string, def string) string {
	v, ok := s.Attrs[strings.ToLower(name)]
	if !ok {
		return def
	}
	if str, ok := v.(string); ok {
		return str
	}
	return def
}

// Floats returns the named attribute as a float64 slice, or nil if absent.
// Comma-separated string values (VCF Number=. fields) are parsed.
func (s *SNP) Floats(name string) []float64 {
	v, ok := s.Attrs[strings.ToLower(name)]
	if !ok {
		return nil
	}
	switch x := v.(type) {
	case []float64:
		return x
	case string:
		parts := strings.Split(x, ",")
		out := make([]float64, 0, len(parts))
		for _, p := range parts {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil
			}
			out = append(out, f)
		}
		return out
	}
	return nil
}

// AddAttrs applies an enrichment hook to every SNP, attaching the derived
// attributes it returns. This is how optional fields (consequence
// classification, library tag, replicate counts) reach the records without
// widening the record shape.
func AddAttrs(snps []*SNP, fn func(*SNP) map[string]interface{}) {
	for _, s := range snps {
		for name, value := range fn(s) {
			s.SetAttr(name, value)
		}
	}
}

// SplitMultiAllelic splits a multi-allelic variant into separate records,
// one per alternate allele. Each split gets its own copy of Attrs so that
// per-allele enrichment on one split never leaks to its siblings.
func SplitMultiAllelic(s *SNP) []*SNP {
	alts := strings.Split(s.Alt, ",")
	if len(alts) == 1 {
		return []*SNP{s}
	}

	out := make([]*SNP, len(alts))
	for i, alt := range alts {
		var attrs map[string]interface{}
		if s.Attrs != nil {
			attrs = make(map[string]interface{}, len(s.Attrs))
			for k, v := range s.Attrs {
				attrs[k] = v
			}
		}
		out[i] = &SNP{
			Chrom:  s.Chrom,
			Pos:    s.Pos,
			ID:     s.ID,
			Ref:    s.Ref,
			Alt:    alt,
			Qual:   s.Qual,
			Filter: s.Filter,
			Attrs:  attrs,
		}
	}
	return out
}
