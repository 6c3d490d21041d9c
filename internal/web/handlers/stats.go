package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/kozaktomas/face-verifier/internal/database"
	"github.com/kozaktomas/face-verifier/internal/oracle"
	"go.uber.org/zap"
)

const statsCacheTTL = 10 * time.Second

// statsCache holds cached stats with expiry
type statsCache struct {
	mu        sync.RWMutex
	data      *StatsResponse
	expiresAt time.Time
}

func (c *statsCache) get() (*StatsResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil || time.Now().After(c.expiresAt) {
		return nil, false
	}
	return c.data, true
}

func (c *statsCache) set(data *StatsResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.expiresAt = time.Now().Add(statsCacheTTL)
}

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	store         database.CandidateReader
	oracleBackend string
	matcher       oracle.Matcher
	logger        *zap.Logger
	cache         statsCache
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(store database.CandidateReader, oracleBackend string, matcher oracle.Matcher, logger *zap.Logger) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{store: store, oracleBackend: oracleBackend, matcher: matcher, logger: logger}
}

// StatsResponse represents the statistics response
type StatsResponse struct {
	Candidates int     `json:"candidates"`
	Oracle     string  `json:"oracle"`
	Metric     string  `json:"metric"`
	Tolerance  float64 `json:"tolerance"`
}

// Get returns the number of registered candidates and the active oracle's match rule.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.get(); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	count, err := h.store.CountCandidates(r.Context())
	if err != nil {
		h.logger.Error("failed to count candidates", zap.Error(err))
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	stats := &StatsResponse{
		Candidates: count,
		Oracle:     h.oracleBackend,
		Metric:     h.matcher.Metric(),
		Tolerance:  h.matcher.Tolerance(),
	}
	h.cache.set(stats)
	respondJSON(w, http.StatusOK, stats)
}
