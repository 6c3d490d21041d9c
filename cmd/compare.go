package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/kozaktomas/face-verifier/internal/config"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <reference> <probe>",
	Short: "Compare the faces in two images",
	Long: `Compare reports whether the first face in the reference image and the
first face in the probe image belong to the same person, along with the
embedding distance. Nothing is stored.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().Bool("json", false, "Output as JSON")
	addRunnerFlags(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	cfg := config.Load()
	ctx := context.Background()

	runner, err := newRunner(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Compare(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), map[string]any{
			"match":    result.Match,
			"distance": result.Distance,
		})
	}

	if result.Match {
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Same person (distance %.4f)\n", result.Distance)
	} else {
		color.New(color.FgYellow).Fprintf(cmd.OutOrStdout(), "Different people (distance %.4f)\n", result.Distance)
	}
	return nil
}
