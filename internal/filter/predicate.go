// Package filter provides predicate-based SNP filtering.
//
// Missing-attribute policy: a predicate that references an attribute the
// record does not carry treats the record as a non-match, unless the
// predicate was built with an explicit default value for that attribute.
// Filtering never aborts on an absent attribute. This policy applies to
// both the quality filter and the replicate-support filter.
package filter

import "github.com/phenoseq/phenoseq/internal/snp"

// Predicate decides whether a single SNP record passes a filter.
type Predicate func(*snp.SNP) bool

// Apply returns the records for which pred is true, in input order.
// The input slice and its records are not modified.
func Apply(snps []*snp.SNP, pred Predicate) []*snp.SNP {
	var out []*snp.SNP
	for _, s := range snps {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// And returns a predicate that is true when every given predicate is true.
func And(preds ...Predicate) Predicate {
	return func(s *snp.SNP) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

// Or returns a predicate that is true when any given predicate is true.
func Or(preds ...Predicate) Predicate {
	return func(s *snp.SNP) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(pred Predicate) Predicate {
	return func(s *snp.SNP) bool {
		return !pred(s)
	}
}

// HasAttr requires the named attribute to be present.
func HasAttr(name string) Predicate {
	return func(s *snp.SNP) bool {
		return s.HasAttr(name)
	}
}

// MaxFloat requires attr <= max. An absent attribute takes the value def;
// pass a def above max to make absence a non-match.
func MaxFloat(attr string, max, def float64) Predicate {
	return func(s *snp.SNP) bool {
		return s.Float(attr, def) <= max
	}
}

// MinFloat requires attr >= min. An absent attribute takes the value def;
// pass a def below min to make absence a non-match.
func MinFloat(attr string, min, def float64) Predicate {
	return func(s *snp.SNP) bool {
		return s.Float(attr, def) >= min
	}
}

// MinQual requires the record's quality score to exceed min.
func MinQual(min float64) Predicate {
	return func(s *snp.SNP) bool {
		return s.Qual > min
	}
}

// QualityOptions configures the default quality filter.
type QualityOptions struct {
	MaxAlleleFreq float64 // reject likely fixed calls above this frequency
	MinStrandPVal float64 // minimum per-strand p-value when reported
	MinQual       float64 // minimum caller quality score
}

// DefaultQualityOptions returns the standard thresholds for pooled
// phenotype-sequencing libraries.
func DefaultQualityOptions() QualityOptions {
	return QualityOptions{
		MaxAlleleFreq: 0.5,
		MinStrandPVal: 0.01,
		MinQual:       20,
	}
}

// Quality builds the default quality predicate: allele frequency at most
// MaxAlleleFreq, every reported per-strand p-value at least MinStrandPVal
// (records without the attribute pass that clause), and quality above
// MinQual.
func Quality(opts QualityOptions) Predicate {
	return And(
		MaxFloat("af", opts.MaxAlleleFreq, 0),
		strandPVals(opts.MinStrandPVal),
		MinQual(opts.MinQual),
	)
}

// strandPVals checks the "strand_pvals" tuple when present; absence passes.
func strandPVals(min float64) Predicate {
	return func(s *snp.SNP) bool {
		if !s.HasAttr("strand_pvals") {
			return true
		}
		pvals := s.Floats("strand_pvals")
		if pvals == nil {
			// Present but unparseable: non-match per package policy.
			return false
		}
		for _, p := range pvals {
			if p < min {
				return false
			}
		}
		return true
	}
}
