package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-verifier/internal/facematch"
	"github.com/kozaktomas/face-verifier/internal/imaging"
	"go.uber.org/zap"
)

// CompareHandler serves one-to-one comparisons that never touch the store.
type CompareHandler struct {
	service *facematch.Service
	logger  *zap.Logger
}

// NewCompareHandler creates a new compare handler
func NewCompareHandler(service *facematch.Service, logger *zap.Logger) *CompareHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompareHandler{service: service, logger: logger}
}

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	Reference string `json:"reference"`
	Probe     string `json:"probe"`
}

// CompareResponse reports whether both images show the same person.
type CompareResponse struct {
	Match    bool    `json:"match"`
	Distance float64 `json:"distance"`
}

// Compare matches the first face of the reference image against the probe image.
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reference, err := imaging.DecodeBase64(req.Reference)
	if err != nil {
		respondFlowError(w, h.logger, facematch.FlowCompare, &facematch.ImageError{Image: facematch.ImageReference, Err: err})
		return
	}
	probe, err := imaging.DecodeBase64(req.Probe)
	if err != nil {
		respondFlowError(w, h.logger, facematch.FlowCompare, &facematch.ImageError{Image: facematch.ImageProbe, Err: err})
		return
	}

	result, err := h.service.Compare(r.Context(), reference, probe)
	if err != nil {
		respondFlowError(w, h.logger, facematch.FlowCompare, err)
		return
	}

	respondJSON(w, http.StatusOK, CompareResponse{Match: result.Match, Distance: result.Distance})
}
