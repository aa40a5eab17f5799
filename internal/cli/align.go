package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/wnli/internal/align"
	"github.com/spf13/cobra"
)

var alignDebug bool

// alignCmd represents the align command
var alignCmd = &cobra.Command{
	Use:   "align <premise> <hypothesis>",
	Short: "Show how a hypothesis aligns against its premise",
	Long: `Align finds the ambiguous span of the hypothesis and the premise token it
replaces, without calling any annotation service.

Example:
  wnli align "The trophy doesn't fit in the suitcase because it is too big." "The trophy is too big."`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := &align.Aligner{}
		if alignDebug {
			a.Debug = os.Stderr
		}

		result, err := a.FindOverlap(args[0], args[1])
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		fmt.Println(string(data))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(alignCmd)

	alignCmd.Flags().BoolVar(&alignDebug, "debug", false, "print rejected candidates to stderr")
}
