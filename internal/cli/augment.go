package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/wnli/internal/augment"
	"github.com/ppiankov/wnli/internal/lexicon"
	"github.com/ppiankov/wnli/internal/pipeline"
	"github.com/ppiankov/wnli/internal/worker"
	"github.com/spf13/cobra"
)

var (
	augmentService serviceFlags
	augmentOut     string
	augmentSeed    int64
	pronounTable   string
	augmentTimeout time.Duration
)

// augmentCmd represents the augment command
var augmentCmd = &cobra.Command{
	Use:   "augment <file.tsv>",
	Short: "Synthesize extra training pairs by pronoun substitution",
	Long: `Augment replaces the subject of each hypothesis with a pronoun and appends
the result to the premise. The original hypothesis becomes an entailment
example; premise subjects and objects that agree with the pronoun become
non-entailment examples.

Output is JSON Lines with sentence1, sentence2, label and source_index.

Example:
  wnli augment train.tsv --out augmented.jsonl
  wnli augment train.tsv --seed 7 --pronouns my-pronouns.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runAugment,
}

func init() {
	rootCmd.AddCommand(augmentCmd)

	augmentService.register(augmentCmd)

	augmentCmd.Flags().StringVarP(&augmentOut, "out", "o", "-", "output JSONL path (- for stdout)")
	augmentCmd.Flags().Int64Var(&augmentSeed, "seed", 0, "seed for he/she choice (0 seeds from the clock)")
	augmentCmd.Flags().StringVar(&pronounTable, "pronouns", "", "pronoun table YAML (default: built-in)")
	augmentCmd.Flags().DurationVar(&augmentTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
}

func runAugment(cmd *cobra.Command, args []string) (err error) {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), augmentTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	augmentService.apply(cmd, cfg)
	if cmd.Flags().Changed("seed") {
		cfg.Augment.Seed = augmentSeed
	}
	if cmd.Flags().Changed("pronouns") {
		cfg.Lexicon.PronounTable = pronounTable
	}

	table, err := lexicon.LoadTable(cfg.Lexicon.PronounTable)
	if err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Loaded %d pronoun entries\n", table.Len())
	}

	records, err := worker.ReadRecordsFromFile(file)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d records from %s\n", len(records), file)

	a, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer printCacheStats(a)

	seed := cfg.Augment.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	augmenter := augment.New(a, lexicon.NewInflectorFor(table), table, augment.NewSeededPicker(seed))

	fmt.Fprintf(os.Stderr, "⚙️  Augmenting with %d workers...\n", cfg.Concurrency.Workers)
	result, err := pipeline.AugmentAll(ctx, augmenter, records, cfg.Concurrency.Workers)
	if err != nil {
		return fmt.Errorf("augment: %w", err)
	}

	var w io.Writer = os.Stdout
	if augmentOut != "-" {
		f, err := os.Create(augmentOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output file: %w", closeErr)
			}
		}()
		w = f
	}

	if err := pipeline.WriteJSONL(w, result.Pairs); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Wrote %d pairs (%d records skipped)\n", len(result.Pairs), result.Skipped)
	return nil
}
