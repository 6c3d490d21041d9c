package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-verifier",
	Short: "Register faces and verify identities against them",
	Long: `Face Verifier stores a face embedding for each registered candidate
(name + email) and later checks whether a new image shows one of them.
Embeddings come from an external oracle (an HTTP embedding service or the
in-process dlib recognizer); candidates live in SQLite/libSQL, PostgreSQL
or MariaDB depending on DATABASE_URL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
