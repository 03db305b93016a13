// Package output provides ranked gene list formatters.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/phenoseq/phenoseq/internal/mapping"
	"github.com/phenoseq/phenoseq/internal/score"
)

// TabWriter writes a ranked gene list in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
	rank    int
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Rank",
			"Gene",
			"Hits",
			"P_value",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single gene score. Hit counts come from the grouping the
// scores were computed from; genes absent from it print zero.
func (tw *TabWriter) Write(s score.GeneScore, hits mapping.GeneHits) error {
	tw.rank++
	_, err := fmt.Fprintf(tw.w, "%d\t%s\t%d\t%.6g\n",
		tw.rank, s.GeneID, len(hits[s.GeneID]), s.P)
	return err
}

// WriteAll writes a header followed by every score in order.
func (tw *TabWriter) WriteAll(scores []score.GeneScore, hits mapping.GeneHits) error {
	if err := tw.WriteHeader(); err != nil {
		return err
	}
	for _, s := range scores {
		if err := tw.Write(s, hits); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Flush flushes buffered output.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
