package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/wnli/internal/annotate"
	"github.com/ppiankov/wnli/internal/model"
	"github.com/ppiankov/wnli/internal/pipeline"
	"github.com/ppiankov/wnli/internal/worker"
	"github.com/spf13/cobra"
)

var (
	predictService serviceFlags
	useCoref       bool
	majority       int
	debug          bool
	outJSON        string
	outLabels      string
	batchTimeout   time.Duration
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict <file.tsv>",
	Short: "Label a WNLI dataset with the coreference heuristic",
	Long: `Predict reads a GLUE-format WNLI TSV file (index, sentence1, sentence2,
and optionally label), labels every pair and prints accuracy when the file
is labelled.

Pairs that cannot be aligned or resolved get the majority label.

Example:
  wnli predict dev.tsv
  wnli predict dev.tsv --json report.json --labels predictions.tsv
  wnli predict test.tsv --use-coref=false
  wnli predict dev.tsv --debug --concurrency 1`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictService.register(predictCmd)

	predictCmd.Flags().BoolVar(&useCoref, "use-coref", true, "use the coreference resolver (false labels everything with the majority label)")
	predictCmd.Flags().IntVar(&majority, "majority", int(model.Majority), "fallback label (0 = not_entailment, 1 = entailment)")
	predictCmd.Flags().BoolVar(&debug, "debug", false, "print per-record alignment traces to stderr")
	predictCmd.Flags().StringVar(&outJSON, "json", "", "write the full report as JSON to this path")
	predictCmd.Flags().StringVar(&outLabels, "labels", "", "write index/prediction TSV to this path (- for stdout)")
	predictCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
}

func runPredict(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	predictService.apply(cmd, cfg)
	if cmd.Flags().Changed("use-coref") {
		cfg.Predict.UseCoref = useCoref
	}
	if cmd.Flags().Changed("majority") {
		cfg.Predict.Majority = model.Label(majority)
	}
	if debug {
		cfg.Predict.Debug = true
	}
	if cfg.Predict.Majority != model.Entailment && cfg.Predict.Majority != model.NotEntailment {
		return fmt.Errorf("majority label must be 0 or 1, got %d", cfg.Predict.Majority)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  WNLI Prediction\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Coref:        %v\n", cfg.Predict.UseCoref)
	fmt.Fprintf(os.Stderr, "  Majority:     %s\n", cfg.Predict.Majority)
	if cfg.Predict.UseCoref {
		fmt.Fprintf(os.Stderr, "  Provider:     %s\n", cfg.Service.Provider)
		fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	}
	fmt.Fprintf(os.Stderr, "\n")

	fmt.Fprintf(os.Stderr, "⚙️  Reading records from file...\n")
	records, err := worker.ReadRecordsFromFile(file)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d records\n", len(records))

	var resolver annotate.Resolver
	if cfg.Predict.UseCoref {
		a, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		resolver = a
		defer printCacheStats(a)
	}

	opts := pipeline.Options{
		UseCoref: cfg.Predict.UseCoref,
		Majority: cfg.Predict.Majority,
		Workers:  cfg.Concurrency.Workers,
		Progress: os.Stderr,
	}
	if cfg.Predict.Debug {
		opts.Debug = os.Stderr
	}

	predictor := pipeline.NewPredictor(resolver, opts)
	result, err := predictor.PredictAll(ctx, records)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}

	settings := model.Settings{
		UseCoref: cfg.Predict.UseCoref,
		Majority: cfg.Predict.Majority,
		Workers:  cfg.Concurrency.Workers,
	}
	if cfg.Predict.UseCoref {
		settings.Provider = cfg.Service.Provider
	}

	report, err := pipeline.BuildReport(file, settings, records, result)
	if err != nil {
		return err
	}

	renderer := pipeline.NewRenderer()
	renderer.RenderSummary(os.Stderr, report)

	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
	}

	if outLabels != "" {
		if err := writeLabels(renderer, result, outLabels); err != nil {
			return err
		}
	}

	return nil
}

func writeLabels(renderer *pipeline.Renderer, result *pipeline.PredictResult, path string) (err error) {
	if path == "-" {
		return renderer.RenderLabels(os.Stdout, result)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create labels file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close labels file: %w", closeErr)
		}
	}()

	if err := renderer.RenderLabels(f, result); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote labels: %s\n", path)

	return nil
}
