package annotation

import (
	"fmt"
	"sort"

	"github.com/phenoseq/phenoseq/internal/genome"
)

// DB is the read-only annotation database: genes indexed by chromosome
// with interval trees for overlap queries. Genes are added once and the
// index is built on first query; mapping and scoring never mutate it.
type DB struct {
	genesByChrom map[string][]*Gene
	byID         map[string]*Gene
	geneTrees    map[string]*intervalTree
	exonTrees    map[string]*intervalTree
	built        bool
}

// New creates a new empty annotation database.
func New() *DB {
	return &DB{
		genesByChrom: make(map[string][]*Gene),
		byID:         make(map[string]*Gene),
	}
}

// AddGene adds a gene to the database. Chromosome names are normalized
// (leading "chr" stripped) so that VCF and annotation naming conventions
// interoperate.
func (db *DB) AddGene(g *Gene) {
	chrom := normalizeChrom(g.Chrom)
	db.genesByChrom[chrom] = append(db.genesByChrom[chrom], g)
	db.byID[g.ID] = g
	db.built = false
}

// Build constructs the per-chromosome interval trees. Queries build the
// index lazily on first use; call Build explicitly before sharing the
// database across concurrent pipeline runs.
func (db *DB) Build() {
	db.build()
}

// build constructs the per-chromosome interval trees. In a mixed
// annotation (some genes with exon structure, some bare intervals) the
// bare genes are indexed in the exon trees as synthetic single-exon
// spans so that exon-level mapping still reaches them.
func (db *DB) build() {
	db.geneTrees = make(map[string]*intervalTree, len(db.genesByChrom))
	db.exonTrees = make(map[string]*intervalTree, len(db.genesByChrom))
	mixed := db.hasExonStructure()

	for chrom, genes := range db.genesByChrom {
		geneSpans := make([]interval, len(genes))
		var exonSpans []interval
		for i, g := range genes {
			geneSpans[i] = interval{start: g.Start, end: g.End, gene: g}
			if len(g.Exons) == 0 {
				if mixed {
					exonSpans = append(exonSpans, interval{
						start:  g.Start,
						end:    g.End,
						gene:   g,
						exonID: spanExonID(g.ID),
					})
				}
				continue
			}
			for _, e := range g.Exons {
				exonSpans = append(exonSpans, interval{
					start:  e.Start,
					end:    e.End,
					gene:   g,
					exonID: e.ID,
				})
			}
		}
		db.geneTrees[chrom] = buildIntervalTree(geneSpans)
		db.exonTrees[chrom] = buildIntervalTree(exonSpans)
	}
	db.built = true
}

// hasExonStructure reports whether any gene carries exon intervals.
func (db *DB) hasExonStructure() bool {
	for _, g := range db.byID {
		if len(g.Exons) > 0 {
			return true
		}
	}
	return false
}

// spanExonID names the synthetic exon covering a bare gene's full span.
func spanExonID(geneID string) string {
	return geneID + ".span"
}

// FindGenes returns all genes whose [Start, End] span contains the
// position. Intergenic positions return nil.
func (db *DB) FindGenes(chrom string, pos int64) []*Gene {
	if !db.built {
		db.build()
	}
	tree, ok := db.geneTrees[normalizeChrom(chrom)]
	if !ok {
		return nil
	}
	overlaps := tree.findOverlaps(pos)
	if len(overlaps) == 0 {
		return nil
	}
	genes := make([]*Gene, len(overlaps))
	for i, iv := range overlaps {
		genes[i] = iv.gene
	}
	return genes
}

// FindExons returns the identifiers of all exons containing the position.
func (db *DB) FindExons(chrom string, pos int64) []string {
	if !db.built {
		db.build()
	}
	tree, ok := db.exonTrees[normalizeChrom(chrom)]
	if !ok {
		return nil
	}
	overlaps := tree.findOverlaps(pos)
	if len(overlaps) == 0 {
		return nil
	}
	ids := make([]string, len(overlaps))
	for i, iv := range overlaps {
		ids[i] = iv.exonID
	}
	return ids
}

// Gene returns the gene with the given identifier, or nil if not found.
func (db *DB) Gene(id string) *Gene {
	return db.byID[id]
}

// GeneCount returns the total number of genes in the database.
func (db *DB) GeneCount() int {
	return len(db.byID)
}

// GeneIDs returns the sorted identifiers of all genes.
func (db *DB) GeneIDs() []string {
	ids := make([]string, 0, len(db.byID))
	for id := range db.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TargetSizes returns each gene's effective target size.
func (db *DB) TargetSizes() map[string]int64 {
	sizes := make(map[string]int64, len(db.byID))
	for id, g := range db.byID {
		sizes[id] = g.TargetSize()
	}
	return sizes
}

// TotalTargetSize returns the summed effective target size of all genes.
func (db *DB) TotalTargetSize() int64 {
	var total int64
	for _, g := range db.byID {
		total += g.TargetSize()
	}
	return total
}

// ExonOwners returns the exon-to-gene translation table for multi-exon
// mapping: every exon identifier in the database mapped to its owning
// gene's identifier. In a mixed annotation the synthetic full-span exons
// of bare genes are included; with no exon structure at all the table is
// empty and mapping falls back to gene intervals.
func (db *DB) ExonOwners() map[string]string {
	owners := make(map[string]string)
	mixed := db.hasExonStructure()
	for id, g := range db.byID {
		if len(g.Exons) == 0 {
			if mixed {
				owners[spanExonID(id)] = id
			}
			continue
		}
		for _, e := range g.Exons {
			owners[e.ID] = id
		}
	}
	return owners
}

// GeneCompositions computes each gene's GC/AT base counts over its merged
// exonic footprint using the supplied reference genome. A gene whose
// chromosome is missing from the genome is an error: the annotation and
// the reference do not describe the same assembly.
func (db *DB) GeneCompositions(gen *genome.Genome) (map[string]genome.Composition, error) {
	comps := make(map[string]genome.Composition, len(db.byID))
	for id, g := range db.byID {
		var comp genome.Composition
		for _, e := range g.Footprint() {
			seq, err := gen.Subsequence(g.Chrom, e.Start, e.End)
			if err != nil {
				return nil, fmt.Errorf("composition for gene %s: %w", id, err)
			}
			comp = comp.Add(genome.CountBases(seq))
		}
		comps[id] = comp
	}
	return comps, nil
}

func normalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}
