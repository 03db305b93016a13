// Package main provides the phenoseq command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/phenoseq/phenoseq/internal/annotation"
	"github.com/phenoseq/phenoseq/internal/filter"
	"github.com/phenoseq/phenoseq/internal/genome"
	"github.com/phenoseq/phenoseq/internal/output"
	"github.com/phenoseq/phenoseq/internal/pipeline"
	"github.com/phenoseq/phenoseq/internal/snp"
	"github.com/phenoseq/phenoseq/internal/store"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Parse()

	if showVersion {
		fmt.Printf("phenoseq version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "score":
		return runScore(args[1:])
	case "import":
		return runImport(args[1:])
	case "config":
		return runConfig(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `phenoseq - rank candidate causal genes from phenotype sequencing

Usage:
  phenoseq [options] <command> [arguments]

Commands:
  score       Score and rank genes from called SNPs
  import      Import replicate VCFs into a variant-call database
  config      Manage phenoseq configuration
  help        Show this help message

Global Options:
  --version   Show version information

Examples:
  # Score a pooled experiment
  phenoseq score --annotation genes.gff3 --genome ref.fa pooled.vcf

  # Score an unpooled experiment with 12 tagged libraries
  phenoseq score --annotation genes.gff3 --model unpooled --samples 12 calls.vcf

  # Require support in 2 of the imported replicates
  phenoseq import --calls-db calls.duckdb rep1.vcf rep2.vcf rep3.vcf
  phenoseq score --annotation genes.gff3 --calls-db calls.duckdb --min-replicates 2 pooled.vcf

For more information on a command, use:
  phenoseq <command> --help
`)
}

func runScore(args []string) int {
	fs := flag.NewFlagSet("score", flag.ExitOnError)

	var (
		annotationPath string
		genomePath     string
		model          string
		noBonferroni   bool
		tests          int
		gcWeight       float64
		nonSynOnly     bool
		noQualFilter   bool
		callsDB        string
		minReplicates  int
		samples        int
		exomeSize      int64
		outputFile     string
		verbose        bool
	)

	fs.StringVar(&annotationPath, "annotation", "", "Gene annotation file (GFF3 or GTF, required)")
	fs.StringVar(&genomePath, "genome", "", "Reference genome FASTA for composition-aware scoring")
	fs.StringVar(&model, "model", "pooled", "Scoring model: pooled or unpooled")
	fs.BoolVar(&noBonferroni, "no-bonferroni", false, "Report raw p-values without multiple-testing correction")
	fs.IntVar(&tests, "tests", 0, "Bonferroni test count (default: number of genes with hits)")
	fs.Float64Var(&gcWeight, "gc-weight", 1.0, "Relative GC-base mutability in the pooled model")
	fs.BoolVar(&nonSynOnly, "nonsyn", false, "Score only protein-altering SNPs")
	fs.BoolVar(&noQualFilter, "no-qual-filter", false, "Skip the default quality filter")
	fs.StringVar(&callsDB, "calls-db", "", "Variant-call database for replicate filtering")
	fs.IntVar(&minReplicates, "min-replicates", 0, "Require SNP support in at least this many replicates")
	fs.IntVar(&samples, "samples", 0, "Total sample count (unpooled model)")
	fs.Int64Var(&exomeSize, "exome-size", 0, "Total exome size (unpooled model, default: annotated target size)")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.BoolVar(&verbose, "v", false, "Verbose progress logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Score and rank genes from called SNPs.

Usage:
  phenoseq score [options] <input-vcf>...

Arguments:
  <input-vcf>  One or more VCF files of called SNPs (use '-' for stdin)

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  phenoseq score --annotation genes.gff3 pooled.vcf
  phenoseq score --annotation genes.gff3 --genome ref.fa --nonsyn pooled.vcf
  phenoseq score --annotation genes.gff3 --model unpooled --samples 12 calls.vcf
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: input VCF argument required\n\n")
		fs.Usage()
		return ExitUsage
	}
	if annotationPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --annotation is required\n")
		return ExitUsage
	}

	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			logger = l
			defer logger.Sync()
		}
	}

	// Read SNPs from all inputs
	var snps []*snp.SNP
	for _, path := range fs.Args() {
		parser, err := snp.NewParser(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		parsed, err := parser.ReadAll()
		parser.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
			return ExitError
		}
		snps = append(snps, parsed...)
	}
	fmt.Fprintf(os.Stderr, "Read %d SNP records\n", len(snps))

	// Load annotation
	db := annotation.New()
	if err := annotation.NewGFFLoader(annotationPath).Load(db); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading annotation: %v\n", err)
		return ExitError
	}
	fmt.Fprintf(os.Stderr, "Loaded %d genes from %s\n", db.GeneCount(), annotationPath)

	p := pipeline.New(db)
	p.SetLogger(logger)

	// Load genome if supplied
	if genomePath != "" {
		gen, err := genome.LoadFASTA(genomePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading genome: %v\n", err)
			return ExitError
		}
		fmt.Fprintf(os.Stderr, "Loaded %d contigs from %s\n", gen.ContigCount(), genomePath)
		p.SetGenome(gen)
	}

	// Assemble the SNP filter
	var preds []filter.Predicate
	if !noQualFilter {
		preds = append(preds, filter.Quality(filter.DefaultQualityOptions()))
	}
	if minReplicates > 0 {
		if callsDB == "" {
			fmt.Fprintf(os.Stderr, "Error: --min-replicates requires --calls-db\n")
			return ExitUsage
		}
		s, err := store.Open(callsDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening calls database: %v\n", err)
			return ExitError
		}
		defer s.Close()
		preds = append(preds, filter.MinReplicates(s, minReplicates))
	}
	var pred filter.Predicate
	if len(preds) > 0 {
		pred = filter.And(preds...)
	}

	cfg := pipeline.Config{
		Model:      pipeline.Model(model),
		Bonferroni: !noBonferroni,
		Tests:      tests,
		GCWeight:   gcWeight,
		NonSynOnly: nonSynOnly,
		Samples:    samples,
		ExomeSize:  exomeSize,
	}

	scores, hits, err := p.Run(snps, pred, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	out := os.Stdout
	if outputFile != "" {
		out, err = os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return ExitError
		}
		defer out.Close()
	}

	if err := output.NewTabWriter(out).WriteAll(scores, hits); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing results: %v\n", err)
		return ExitError
	}

	fmt.Fprintf(os.Stderr, "Ranked %d genes\n", len(scores))
	return ExitSuccess
}

func runImport(args []string) int {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	var callsDB string
	fs.StringVar(&callsDB, "calls-db", "", "Variant-call database to create or append to (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Import replicate VCFs into a variant-call database.

Each input file becomes one dataset, named after its path. The database
backs the --min-replicates filter of the score command.

Usage:
  phenoseq import --calls-db <db> <vcf>...

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if callsDB == "" {
		fmt.Fprintf(os.Stderr, "Error: --calls-db is required\n")
		return ExitUsage
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: at least one input VCF required\n\n")
		fs.Usage()
		return ExitUsage
	}

	s, err := store.Open(callsDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening calls database: %v\n", err)
		return ExitError
	}
	defer s.Close()

	for _, path := range fs.Args() {
		parser, err := snp.NewParser(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return ExitError
		}
		snps, err := parser.ReadAll()
		parser.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", path, err)
			return ExitError
		}
		if err := s.WriteCalls(path, snps); err != nil {
			fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", path, err)
			return ExitError
		}
		fmt.Fprintf(os.Stderr, "Imported %d calls from %s\n", len(snps), path)
	}

	return ExitSuccess
}
