package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/kozaktomas/face-verifier/internal/config"
	"github.com/kozaktomas/face-verifier/internal/facematch"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <image>",
	Short: "Check whether an image shows a registered candidate",
	Long: `Verify compares the first face in the image against every registered
candidate in registration order and prints the first match.
Exits non-zero when nobody matches.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	addRunnerFlags(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx := context.Background()

	runner, err := newRunner(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	candidate, err := runner.Verify(ctx, args[0])
	if errors.Is(err, facematch.ErrNotFound) {
		return errors.New("candidate not found")
	}
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Candidate verified: %s <%s>\n", candidate.Name, candidate.Email)
	return nil
}
