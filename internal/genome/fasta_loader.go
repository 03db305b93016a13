package genome

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadFASTA reads a reference genome from a FASTA file. Plain and gzipped
// (.gz) files are supported. The contig name is the first whitespace-
// delimited token of each header line.
func LoadFASTA(path string) (*Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return ReadFASTA(reader)
}

// ReadFASTA parses FASTA content from a reader.
func ReadFASTA(reader io.Reader) (*Genome, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long sequence lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024) // 10MB max line

	g := New()
	var currentName string
	var currentSeq strings.Builder

	flush := func() {
		if currentName != "" && currentSeq.Len() > 0 {
			g.AddSequence(currentName, currentSeq.String())
		}
		currentSeq.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ">") {
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, fmt.Errorf("malformed FASTA header: missing contig name")
			}
			flush()
			currentName = fields[0]
			continue
		}

		if currentName == "" {
			return nil, fmt.Errorf("sequence data before first FASTA header")
		}
		currentSeq.WriteString(line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan FASTA: %w", err)
	}

	flush()

	if g.ContigCount() == 0 {
		return nil, fmt.Errorf("no sequences found in FASTA input")
	}

	return g, nil
}
