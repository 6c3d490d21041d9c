package handlers

import (
	"net/http"

	"github.com/kozaktomas/face-verifier/internal/facematch"
	"github.com/kozaktomas/face-verifier/internal/imaging"
	"go.uber.org/zap"
)

// CandidatesHandler serves registration and verification.
type CandidatesHandler struct {
	service *facematch.Service
	logger  *zap.Logger
}

// NewCandidatesHandler creates a new candidates handler
func NewCandidatesHandler(service *facematch.Service, logger *zap.Logger) *CandidatesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidatesHandler{service: service, logger: logger}
}

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

// VerifyRequest is the body of POST /api/verify.
type VerifyRequest struct {
	Image string `json:"image"`
}

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyResponse identifies the matched candidate.
type VerifyResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// Register stores a new candidate from a base64 image.
func (h *CandidatesHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	img, err := imaging.DecodeBase64(req.Image)
	if err != nil {
		respondFlowError(w, h.logger, facematch.FlowRegister, err)
		return
	}

	if _, err := h.service.Register(r.Context(), req.Name, req.Email, img); err != nil {
		respondFlowError(w, h.logger, facematch.FlowRegister, err)
		return
	}

	respondJSON(w, http.StatusOK, MessageResponse{Message: msgRegistered})
}

// Verify looks up the candidate whose face matches a base64 image.
func (h *CandidatesHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	img, err := imaging.DecodeBase64(req.Image)
	if err != nil {
		respondFlowError(w, h.logger, facematch.FlowVerify, err)
		return
	}

	candidate, err := h.service.Verify(r.Context(), img)
	if err != nil {
		respondFlowError(w, h.logger, facematch.FlowVerify, err)
		return
	}

	respondJSON(w, http.StatusOK, VerifyResponse{
		Message: msgVerified,
		Name:    candidate.Name,
		Email:   candidate.Email,
	})
}
