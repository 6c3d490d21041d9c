package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/kozaktomas/face-verifier/internal/config"
	"github.com/kozaktomas/face-verifier/internal/database"
	"github.com/kozaktomas/face-verifier/internal/facematch"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Inspect and manage registered candidates",
	Long:  `Administrative access to the candidate store at DATABASE_URL.`,
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered candidates in registration order",
	Args:  cobra.NoArgs,
	RunE:  runCandidatesList,
}

var candidatesDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a candidate by email",
	Args:  cobra.NoArgs,
	RunE:  runCandidatesDelete,
}

func init() {
	rootCmd.AddCommand(candidatesCmd)
	candidatesCmd.AddCommand(candidatesListCmd)
	candidatesCmd.AddCommand(candidatesDeleteCmd)

	candidatesListCmd.Flags().Bool("json", false, "Output as JSON")
	candidatesDeleteCmd.Flags().String("email", "", "Email of the candidate to delete (required)")
}

// candidateRow is the listing shape; embeddings are summarized by their dimension.
type candidateRow struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Dim   int    `json:"dim"`
}

func toRows(candidates []database.Candidate) []candidateRow {
	rows := make([]candidateRow, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		rows[i] = candidateRow{ID: c.ID, Name: c.Name, Email: c.Email, Dim: c.Dim()}
	}
	return rows
}

func runCandidatesList(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	cfg := config.Load()
	ctx := context.Background()

	store, err := openStore(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	candidates, err := store.ListCandidates(ctx)
	if err != nil {
		return fmt.Errorf("failed to list candidates: %w", err)
	}

	rows := toRows(candidates)
	if jsonOutput {
		return outputJSON(cmd.OutOrStdout(), rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No candidates registered")
		return nil
	}
	renderCandidateTable(cmd.OutOrStdout(), rows)
	return nil
}

func renderCandidateTable(w io.Writer, rows []candidateRow) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Name", "Email", "Dim"})
	for _, r := range rows {
		table.Append([]string{strconv.FormatInt(r.ID, 10), r.Name, r.Email, strconv.Itoa(r.Dim)})
	}
	table.Render()
}

func runCandidatesDelete(cmd *cobra.Command, args []string) error {
	email := facematch.NormalizeEmail(mustGetString(cmd, "email"))
	if email == "" {
		return errors.New("--email is required")
	}

	cfg := config.Load()
	ctx := context.Background()

	store, err := openStore(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := store.DeleteCandidate(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	if !deleted {
		return fmt.Errorf("no candidate registered with email %s", email)
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Deleted candidate %s\n", email)
	return nil
}

// outputJSON writes data as indented JSON.
func outputJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
