package annotation

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// GFFLoader loads gene annotations from GFF3 or GTF files. Both attribute
// styles are understood (key=value for GFF3, key "value" for GTF).
type GFFLoader struct {
	path string
}

// NewGFFLoader creates a new loader for the given annotation file.
func NewGFFLoader(path string) *GFFLoader {
	return &GFFLoader{path: path}
}

// Load parses the annotation file and populates the database.
func (l *GFFLoader) Load(db *DB) error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open annotation file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return l.parse(reader, db)
}

// gffFeature represents a parsed annotation line.
type gffFeature struct {
	chrom       string
	featureType string
	start       int64
	end         int64
	strand      string
	attributes  map[string]string
}

// parse reads features and assembles genes with their exons. Exons reach
// their gene either directly (gene_id attribute, GTF style) or through a
// transcript/mRNA parent chain (Parent attribute, GFF3 style).
func (l *GFFLoader) parse(reader io.Reader, db *DB) error {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	genes := make(map[string]*Gene)
	var geneOrder []string
	parentGene := make(map[string]string) // transcript ID -> gene ID
	type pendingExon struct {
		exon    Exon
		parents []string // candidate transcript or gene IDs, in priority order
	}
	var pending []pendingExon
	exonSeq := make(map[string]int)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		feat, err := parseGFFLine(line)
		if err != nil {
			continue // Skip malformed lines
		}

		switch feat.featureType {
		case "gene":
			id := firstAttr(feat.attributes, "ID", "gene_id", "locus_tag")
			if id == "" {
				continue
			}
			if _, ok := genes[id]; !ok {
				genes[id] = &Gene{
					ID:     id,
					Name:   firstAttr(feat.attributes, "Name", "gene_name", "gene"),
					Chrom:  feat.chrom,
					Start:  feat.start,
					End:    feat.end,
					Strand: parseStrand(feat.strand),
				}
				geneOrder = append(geneOrder, id)
			}

		case "mRNA", "transcript":
			txID := firstAttr(feat.attributes, "ID", "transcript_id")
			geneID := firstAttr(feat.attributes, "Parent", "gene_id")
			if txID != "" && geneID != "" {
				parentGene[txID] = geneID
			}

		case "exon":
			var parents []string
			for _, name := range []string{"Parent", "transcript_id", "gene_id"} {
				if v := feat.attributes[name]; v != "" {
					parents = append(parents, v)
				}
			}
			if len(parents) == 0 {
				continue
			}
			id := firstAttr(feat.attributes, "ID", "exon_id")
			pending = append(pending, pendingExon{
				exon:    Exon{ID: id, Start: feat.start, End: feat.end},
				parents: parents,
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan annotation: %w", err)
	}

	// Attach exons to their owning genes, following the transcript chain
	// when the direct parent is not a gene.
	for _, pe := range pending {
		var geneID string
		for _, parent := range pe.parents {
			if _, ok := genes[parent]; ok {
				geneID = parent
				break
			}
			if owner := parentGene[parent]; owner != "" {
				geneID = owner
				break
			}
		}
		g, ok := genes[geneID]
		if !ok {
			continue // Orphan exon, annotation fragment
		}
		exon := pe.exon
		if exon.ID == "" {
			exonSeq[geneID]++
			exon.ID = fmt.Sprintf("%s.exon%d", geneID, exonSeq[geneID])
		}
		g.Exons = append(g.Exons, exon)
		if exon.Start < g.Start {
			g.Start = exon.Start
		}
		if exon.End > g.End {
			g.End = exon.End
		}
	}

	if len(genes) == 0 {
		return fmt.Errorf("no gene features found in %s", l.path)
	}

	for _, id := range geneOrder {
		db.AddGene(genes[id])
	}
	db.Build()

	return nil
}

// parseGFFLine parses one tab-delimited annotation line.
func parseGFFLine(line string) (*gffFeature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("expected 9 columns, found %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid start: %s", fields[3])
	}
	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid end: %s", fields[4])
	}

	return &gffFeature{
		chrom:       fields[0],
		featureType: fields[2],
		start:       start,
		end:         end,
		strand:      fields[6],
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes handles both GFF3 (k=v;k=v) and GTF (k "v"; k "v";) styles.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i := strings.Index(part, "="); i > 0 {
			attrs[part[:i]] = strings.TrimSpace(part[i+1:])
			continue
		}
		if i := strings.Index(part, " "); i > 0 {
			attrs[part[:i]] = strings.Trim(part[i+1:], `" `)
		}
	}
	return attrs
}

func firstAttr(attrs map[string]string, names ...string) string {
	for _, name := range names {
		if v := attrs[name]; v != "" {
			return v
		}
	}
	return ""
}

func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}
