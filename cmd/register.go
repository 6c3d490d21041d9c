package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/kozaktomas/face-verifier/internal/config"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <image>",
	Short: "Register a candidate's face",
	Long: `Register stores the first face found in the image under the given name
and email. By default the image is sent to a running server (API_URL or
--server); use --local to write to DATABASE_URL directly.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("name", "", "Candidate name (required)")
	registerCmd.Flags().String("email", "", "Candidate email (required)")
	addRunnerFlags(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")
	email := mustGetString(cmd, "email")
	if name == "" || email == "" {
		return errors.New("--name and --email are required")
	}

	cfg := config.Load()
	ctx := context.Background()

	runner, err := newRunner(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := runner.Register(ctx, name, email, args[0]); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Candidate registered successfully: %s <%s>\n", name, email)
	return nil
}
