package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/kozaktomas/face-verifier/internal/client"
	"github.com/kozaktomas/face-verifier/internal/config"
	"github.com/kozaktomas/face-verifier/internal/database"
	"github.com/kozaktomas/face-verifier/internal/facematch"
	"github.com/kozaktomas/face-verifier/internal/imaging"
	"github.com/kozaktomas/face-verifier/internal/logging"
	"github.com/spf13/cobra"
)

// flowRunner runs the flows either in-process or against a server.
type flowRunner interface {
	Register(ctx context.Context, name, email, imagePath string) error
	Verify(ctx context.Context, imagePath string) (*database.Candidate, error)
	Compare(ctx context.Context, referencePath, probePath string) (*facematch.Comparison, error)
	Close()
}

// addRunnerFlags registers --local and --server on a command.
func addRunnerFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("local", false, "Run in-process against DATABASE_URL and the configured oracle instead of a server")
	cmd.Flags().String("server", "", "Server URL for remote mode (default API_URL)")
}

// newRunner picks the local or remote runner from the command's flags.
func newRunner(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (flowRunner, error) {
	if mustGetBool(cmd, "local") {
		return newLocalRunner(ctx, cfg)
	}
	server := mustGetString(cmd, "server")
	if server == "" {
		server = cfg.APIURL
	}
	c, err := client.New(server)
	if err != nil {
		return nil, err
	}
	return &remoteRunner{client: c}, nil
}

type localRunner struct {
	service *facematch.Service
	release func()
}

func newLocalRunner(ctx context.Context, cfg *config.Config) (*localRunner, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	o, closeOracle, err := newOracle(&cfg.Oracle)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, &cfg.Database)
	if err != nil {
		closeOracle()
		return nil, err
	}

	return &localRunner{
		service: facematch.NewService(o, store, facematch.WithLogger(logger)),
		release: func() {
			store.Close()
			closeOracle()
			_ = logger.Sync()
		},
	}, nil
}

func (r *localRunner) Register(ctx context.Context, name, email, imagePath string) error {
	img, err := imaging.DecodeFile(imagePath)
	if err != nil {
		return err
	}
	_, err = r.service.Register(ctx, name, email, img)
	return err
}

func (r *localRunner) Verify(ctx context.Context, imagePath string) (*database.Candidate, error) {
	img, err := imaging.DecodeFile(imagePath)
	if err != nil {
		return nil, err
	}
	return r.service.Verify(ctx, img)
}

func (r *localRunner) Compare(ctx context.Context, referencePath, probePath string) (*facematch.Comparison, error) {
	reference, err := imaging.DecodeFile(referencePath)
	if err != nil {
		return nil, &facematch.ImageError{Image: facematch.ImageReference, Err: err}
	}
	probe, err := imaging.DecodeFile(probePath)
	if err != nil {
		return nil, &facematch.ImageError{Image: facematch.ImageProbe, Err: err}
	}
	return r.service.Compare(ctx, reference, probe)
}

func (r *localRunner) Close() {
	r.release()
}

type remoteRunner struct {
	client *client.Client
}

// readBase64 loads an image file for upload; decoding is left to the server.
func readBase64(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator's command line
	if err != nil {
		return "", fmt.Errorf("reading image %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (r *remoteRunner) Register(ctx context.Context, name, email, imagePath string) error {
	image, err := readBase64(imagePath)
	if err != nil {
		return err
	}
	_, err = r.client.Register(ctx, name, email, image)
	return err
}

func (r *remoteRunner) Verify(ctx context.Context, imagePath string) (*database.Candidate, error) {
	image, err := readBase64(imagePath)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Verify(ctx, image)
	if err != nil {
		return nil, err
	}
	return &database.Candidate{Name: resp.Name, Email: resp.Email}, nil
}

func (r *remoteRunner) Compare(ctx context.Context, referencePath, probePath string) (*facematch.Comparison, error) {
	reference, err := readBase64(referencePath)
	if err != nil {
		return nil, err
	}
	probe, err := readBase64(probePath)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Compare(ctx, reference, probe)
	if err != nil {
		return nil, err
	}
	return &facematch.Comparison{Match: resp.Match, Distance: resp.Distance}, nil
}

func (r *remoteRunner) Close() {}
