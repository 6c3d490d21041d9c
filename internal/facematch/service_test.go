package facematch

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"sync"
	"testing"

	"github.com/kozaktomas/face-verifier/internal/database"
	dbmock "github.com/kozaktomas/face-verifier/internal/database/mock"
	"github.com/kozaktomas/face-verifier/internal/metrics"
	oraclemock "github.com/kozaktomas/face-verifier/internal/oracle/mock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	aliceKey   = color.RGBA{R: 255, A: 255}
	alice2Key  = color.RGBA{R: 250, A: 255}
	bobKey     = color.RGBA{G: 255, A: 255}
	blankKey   = color.RGBA{B: 255, A: 255}
	groupKey   = color.RGBA{R: 255, G: 255, A: 255}
	strangeKey = color.RGBA{R: 1, G: 2, B: 3, A: 255}
)

func vec(values ...float64) []float64 { return values }

type fixture struct {
	oracle  *oraclemock.MockOracle
	store   *dbmock.MockCandidateStore
	metrics *metrics.Recorder
	svc     *Service
}

func newFixture() *fixture {
	o := oraclemock.NewMockOracle()
	o.AddFaces(aliceKey, vec(0, 0, 0))
	o.AddFaces(alice2Key, vec(0.1, 0.1, 0.1))
	o.AddFaces(bobKey, vec(1, 1, 1))
	o.AddFaces(strangeKey, vec(5, 5, 5))
	o.AddFaces(groupKey, vec(1, 1, 1), vec(0, 0, 0))

	store := dbmock.NewMockCandidateStore()
	m := metrics.New()
	return &fixture{
		oracle:  o,
		store:   store,
		metrics: m,
		svc:     NewService(o, store, WithMetrics(m)),
	}
}

func TestRegisterThenVerify(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.svc.Register(ctx, "Alice", "alice@x.com", oraclemock.FaceImage(aliceKey))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := f.svc.Verify(ctx, oraclemock.FaceImage(alice2Key))
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@x.com", got.Email)

	expected := `
# HELP face_verifier_flow_total Registration, verification and comparison outcomes
# TYPE face_verifier_flow_total counter
face_verifier_flow_total{flow="register",outcome="success"} 1
face_verifier_flow_total{flow="verify",outcome="success"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "face_verifier_flow_total"))
}

func TestVerify_UnrelatedFaceNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Alice", "alice@x.com", oraclemock.FaceImage(aliceKey))
	require.NoError(t, err)

	_, err = f.svc.Verify(ctx, oraclemock.FaceImage(strangeKey))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerify_EmptyStore(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Verify(context.Background(), oraclemock.FaceImage(aliceKey))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerify_FirstMatchWins(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// the earlier candidate is farther from the probe but still within tolerance
	f.store.AddCandidate(database.Candidate{Name: "Early", Email: "early@x.com", Embedding: vec(0.3, 0.3, 0.3)})
	f.store.AddCandidate(database.Candidate{Name: "Close", Email: "close@x.com", Embedding: vec(0.1, 0.1, 0.1)})

	got, err := f.svc.Verify(ctx, oraclemock.FaceImage(aliceKey))
	require.NoError(t, err)
	assert.Equal(t, "early@x.com", got.Email)
}

func TestVerify_SkipsMismatchedDimension(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.store.AddCandidate(database.Candidate{Name: "Legacy", Email: "legacy@x.com", Embedding: vec(0, 0)})
	f.store.AddCandidate(database.Candidate{Name: "Alice", Email: "alice@x.com", Embedding: vec(0, 0, 0)})

	got, err := f.svc.Verify(ctx, oraclemock.FaceImage(aliceKey))
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", got.Email)
}

func TestVerify_UsesFirstDetectedFace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.store.AddCandidate(database.Candidate{Name: "Alice", Email: "alice@x.com", Embedding: vec(0, 0, 0)})

	// the group image detects Bob first, then Alice
	_, err := f.svc.Verify(ctx, oraclemock.FaceImage(groupKey))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerify_NoFace(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Verify(context.Background(), oraclemock.FaceImage(blankKey))
	assert.ErrorIs(t, err, ErrNoFaceDetected)
}

func TestVerify_StoreError(t *testing.T) {
	f := newFixture()
	f.store.ListError = errors.New("disk on fire")

	_, err := f.svc.Verify(context.Background(), oraclemock.FaceImage(aliceKey))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Alice", "alice@x.com", oraclemock.FaceImage(aliceKey))
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "Bob", "alice@X.COM", oraclemock.FaceImage(bobKey))
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	count, err := f.store.CountCandidates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegister_SameFaceDifferentEmails(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, "Alice", "alice@x.com", oraclemock.FaceImage(aliceKey))
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, "Alice", "alice@work.com", oraclemock.FaceImage(aliceKey))
	require.NoError(t, err)

	count, err := f.store.CountCandidates(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRegister_NoFaceBeforeValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Register(context.Background(), "", "", oraclemock.FaceImage(blankKey))
	assert.ErrorIs(t, err, ErrNoFaceDetected)
}

func TestRegister_InvalidInput(t *testing.T) {
	tests := []struct {
		name, email string
	}{
		{"", "alice@x.com"},
		{"   ", "alice@x.com"},
		{"Alice", ""},
		{"Alice", " \t"},
	}

	for _, tc := range tests {
		t.Run(tc.name+"|"+tc.email, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Register(context.Background(), tc.name, tc.email, oraclemock.FaceImage(aliceKey))
			assert.ErrorIs(t, err, ErrInvalidInput)

			count, err := f.store.CountCandidates(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestRegister_NormalizesFields(t *testing.T) {
	f := newFixture()

	created, err := f.svc.Register(context.Background(), "  Alice ", " Alice@Example.COM ", oraclemock.FaceImage(aliceKey))
	require.NoError(t, err)
	assert.Equal(t, "Alice", created.Name)
	assert.Equal(t, "Alice@example.com", created.Email)
}

func TestRegister_OracleError(t *testing.T) {
	f := newFixture()
	f.oracle.DetectError = errors.New("oracle unavailable")

	_, err := f.svc.Register(context.Background(), "Alice", "alice@x.com", oraclemock.FaceImage(aliceKey))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFaceDetected)
	assert.Contains(t, err.Error(), "oracle unavailable")
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Register(ctx, "Alice", "alice@x.com", oraclemock.FaceImage(aliceKey))
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateEmail)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestCompare(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	same, err := f.svc.Compare(ctx, oraclemock.FaceImage(aliceKey), oraclemock.FaceImage(alice2Key))
	require.NoError(t, err)
	assert.True(t, same.Match)
	assert.InDelta(t, 0.1732, same.Distance, 0.001)

	different, err := f.svc.Compare(ctx, oraclemock.FaceImage(aliceKey), oraclemock.FaceImage(bobKey))
	require.NoError(t, err)
	assert.False(t, different.Match)

	_, err = f.svc.Compare(ctx, oraclemock.FaceImage(blankKey), oraclemock.FaceImage(aliceKey))
	assert.ErrorIs(t, err, ErrNoFaceDetected)
	var imageErr *ImageError
	require.ErrorAs(t, err, &imageErr)
	assert.Equal(t, ImageReference, imageErr.Image)
	assert.Contains(t, err.Error(), "reference image")

	_, err = f.svc.Compare(ctx, oraclemock.FaceImage(aliceKey), oraclemock.FaceImage(blankKey))
	assert.ErrorIs(t, err, ErrNoFaceDetected)
	require.ErrorAs(t, err, &imageErr)
	assert.Equal(t, ImageProbe, imageErr.Image)
}

func TestCompare_WithoutStore(t *testing.T) {
	o := oraclemock.NewMockOracle()
	o.AddFaces(aliceKey, vec(0, 0, 0))
	svc := NewService(o, nil)

	result, err := svc.Compare(context.Background(), oraclemock.FaceImage(aliceKey), oraclemock.FaceImage(aliceKey))
	require.NoError(t, err)
	assert.True(t, result.Match)
	assert.Zero(t, result.Distance)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.OutcomeSuccess},
		{ErrInvalidImage, metrics.OutcomeInvalidImage},
		{ErrInvalidInput, metrics.OutcomeInvalidInput},
		{ErrNoFaceDetected, metrics.OutcomeNoFace},
		{ErrNotFound, metrics.OutcomeNotFound},
		{ErrDuplicateEmail, metrics.OutcomeDuplicateEmail},
		{errors.New("boom"), metrics.OutcomeError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, outcome(tc.err))
	}
}
