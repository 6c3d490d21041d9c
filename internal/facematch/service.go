package facematch

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/kozaktomas/face-verifier/internal/database"
	"github.com/kozaktomas/face-verifier/internal/metrics"
	"github.com/kozaktomas/face-verifier/internal/oracle"
	"go.uber.org/zap"
)

// Flow names used as metric labels.
const (
	FlowRegister = "register"
	FlowVerify   = "verify"
	FlowCompare  = "compare"
)

// Comparison is the result of a one-to-one comparison.
type Comparison struct {
	Match    bool
	Distance float64
}

// Service runs the flows against an oracle and a candidate store.
type Service struct {
	oracle  oracle.Oracle
	store   database.CandidateWriter
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service. store may be nil when only Compare is used.
func NewService(o oracle.Oracle, store database.CandidateWriter, opts ...Option) *Service {
	s := &Service{oracle: o, store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Matcher returns the oracle's match predicate.
func (s *Service) Matcher() oracle.Matcher {
	return s.oracle
}

// firstEmbedding runs the oracle and keeps the first detected face.
func (s *Service) firstEmbedding(ctx context.Context, img image.Image) ([]float64, error) {
	done := s.metrics.TimeOracle()
	embeddings, err := s.oracle.DetectEmbeddings(ctx, img)
	done()
	if err != nil {
		return nil, fmt.Errorf("embedding oracle: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, ErrNoFaceDetected
	}
	if len(embeddings) > 1 {
		s.logger.Debug("multiple faces detected, using the first", zap.Int("faces", len(embeddings)))
	}
	return embeddings[0], nil
}

// Register stores a new candidate for the first face found in img.
// A faceless image fails with ErrNoFaceDetected before name and email are checked.
func (s *Service) Register(ctx context.Context, name, email string, img image.Image) (*database.Candidate, error) {
	candidate, err := s.register(ctx, name, email, img)
	s.metrics.IncFlow(FlowRegister, outcome(err))
	return candidate, err
}

func (s *Service) register(ctx context.Context, name, email string, img image.Image) (*database.Candidate, error) {
	embedding, err := s.firstEmbedding(ctx, img)
	if err != nil {
		return nil, err
	}

	name = NormalizeName(name)
	email = NormalizeEmail(email)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	candidate, err := s.store.CreateCandidate(ctx, name, email, embedding)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			s.logger.Info("email already registered", zap.String("email", sanitizeForLog(email)))
			return nil, err
		}
		return nil, fmt.Errorf("store candidate: %w", err)
	}

	s.logger.Info("candidate registered",
		zap.Int64("id", candidate.ID),
		zap.String("email", sanitizeForLog(email)),
		zap.Int("dim", len(embedding)),
	)
	return candidate, nil
}

// Verify returns the first candidate, in registration order, whose embedding matches
// the first face in img. It returns ErrNotFound when nobody matches.
func (s *Service) Verify(ctx context.Context, img image.Image) (*database.Candidate, error) {
	candidate, err := s.verify(ctx, img)
	s.metrics.IncFlow(FlowVerify, outcome(err))
	return candidate, err
}

func (s *Service) verify(ctx context.Context, img image.Image) (*database.Candidate, error) {
	query, err := s.firstEmbedding(ctx, img)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	scanned := 0
	defer func() { s.metrics.SetScanned(scanned) }()

	for i := range candidates {
		c := &candidates[i]
		scanned++
		if c.Dim() != len(query) {
			s.logger.Warn("skipping candidate with mismatched embedding dimension",
				zap.Int64("id", c.ID),
				zap.Int("stored_dim", c.Dim()),
				zap.Int("query_dim", len(query)),
			)
			continue
		}
		if s.oracle.Match(c.Embedding, query) {
			s.logger.Info("candidate verified",
				zap.Int64("id", c.ID),
				zap.String("email", sanitizeForLog(c.Email)),
				zap.Float64("distance", s.oracle.Distance(c.Embedding, query)),
				zap.String("metric", s.oracle.Metric()),
			)
			return c, nil
		}
	}

	s.logger.Info("no matching candidate", zap.Int("scanned", scanned))
	return nil, ErrNotFound
}

// Compare checks whether the first faces of reference and probe belong to the same person.
// The store is not touched.
func (s *Service) Compare(ctx context.Context, reference, probe image.Image) (*Comparison, error) {
	result, err := s.compare(ctx, reference, probe)
	s.metrics.IncFlow(FlowCompare, outcome(err))
	return result, err
}

func (s *Service) compare(ctx context.Context, reference, probe image.Image) (*Comparison, error) {
	known, err := s.firstEmbedding(ctx, reference)
	if err != nil {
		return nil, &ImageError{Image: ImageReference, Err: err}
	}
	query, err := s.firstEmbedding(ctx, probe)
	if err != nil {
		return nil, &ImageError{Image: ImageProbe, Err: err}
	}

	if len(known) != len(query) {
		return nil, fmt.Errorf("embedding dimensions differ: %d vs %d", len(known), len(query))
	}

	distance := s.oracle.Distance(known, query)
	s.logger.Debug("compared faces", zap.Float64("distance", distance), zap.String("metric", s.oracle.Metric()))
	return &Comparison{Match: s.oracle.Match(known, query), Distance: distance}, nil
}

// outcome maps a flow error to its metric label.
func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrInvalidImage):
		return metrics.OutcomeInvalidImage
	case errors.Is(err, ErrInvalidInput):
		return metrics.OutcomeInvalidInput
	case errors.Is(err, ErrNoFaceDetected):
		return metrics.OutcomeNoFace
	case errors.Is(err, ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrDuplicateEmail):
		return metrics.OutcomeDuplicateEmail
	default:
		return metrics.OutcomeError
	}
}
