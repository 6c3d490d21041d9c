package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fatih/color"
	"github.com/kozaktomas/face-verifier/internal/config"
	"github.com/kozaktomas/face-verifier/internal/constants"
	"github.com/kozaktomas/face-verifier/internal/facematch"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var importCmd = &cobra.Command{
	Use:   "import <manifest.yaml>",
	Short: "Register many candidates from a YAML manifest",
	Long: `Import registers every entry of a manifest such as

  candidates:
    - name: Alice
      email: alice@example.com
      image: faces/alice.jpg

Image paths are relative to the manifest. Entries are registered in
parallel; failures are reported at the end and do not stop the import.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Int("concurrency", constants.DefaultConcurrency, "Number of parallel registrations")
	addRunnerFlags(importCmd)
}

// ManifestEntry is one candidate in an import manifest.
type ManifestEntry struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Image string `yaml:"image"`
}

// Manifest lists candidates to import.
type Manifest struct {
	Candidates []ManifestEntry `yaml:"candidates"`
}

// loadManifest parses a manifest file and resolves image paths against its directory.
func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's command line
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(m.Candidates) == 0 {
		return nil, errors.New("manifest has no candidates")
	}

	base := filepath.Dir(path)
	for i := range m.Candidates {
		e := &m.Candidates[i]
		if e.Image == "" {
			return nil, fmt.Errorf("entry %d (%s): image is required", i+1, e.Email)
		}
		if !filepath.IsAbs(e.Image) {
			e.Image = filepath.Join(base, e.Image)
		}
	}
	return &m, nil
}

// importFailure records one entry that could not be registered.
type importFailure struct {
	Entry ManifestEntry
	Err   error
}

// importCandidates registers every entry with at most concurrency registrations in flight.
func importCandidates(ctx context.Context, runner flowRunner, entries []ManifestEntry, concurrency int, bar *progressbar.ProgressBar) []importFailure {
	var (
		mu       sync.Mutex
		failures []importFailure
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, concurrency))

	for _, entry := range entries {
		g.Go(func() error {
			err := runner.Register(ctx, entry.Name, entry.Email, entry.Image)
			if err != nil {
				mu.Lock()
				failures = append(failures, importFailure{Entry: entry, Err: err})
				mu.Unlock()
			}
			if bar != nil {
				bar.Add(1)
			}
			// one bad entry must not cancel the rest
			return nil
		})
	}
	_ = g.Wait()
	return failures
}

func runImport(cmd *cobra.Command, args []string) error {
	concurrency := mustGetInt(cmd, "concurrency")
	manifest, err := loadManifest(args[0])
	if err != nil {
		return err
	}

	cfg := config.Load()
	ctx := context.Background()

	runner, err := newRunner(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	bar := progressbar.NewOptions(len(manifest.Candidates),
		progressbar.OptionSetDescription("Registering candidates"),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("faces"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	failures := importCandidates(ctx, runner, manifest.Candidates, concurrency, bar)
	_ = bar.Finish()

	out := cmd.OutOrStdout()
	registered := len(manifest.Candidates) - len(failures)
	color.New(color.FgGreen).Fprintf(out, "\nRegistered %d of %d candidates\n", registered, len(manifest.Candidates))
	if len(failures) == 0 {
		return nil
	}

	warn := color.New(color.FgYellow)
	for _, f := range failures {
		reason := f.Err.Error()
		switch {
		case errors.Is(f.Err, facematch.ErrDuplicateEmail):
			reason = "already registered"
		case errors.Is(f.Err, facematch.ErrNoFaceDetected):
			reason = "no face detected"
		}
		warn.Fprintf(out, "  - %s <%s>: %s\n", f.Entry.Name, f.Entry.Email, reason)
	}
	return fmt.Errorf("%d candidates failed to import", len(failures))
}
