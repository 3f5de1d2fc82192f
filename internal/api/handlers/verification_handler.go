package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/chainfolio/chainfolio/internal/models"
	"github.com/chainfolio/chainfolio/internal/providers/verifier"
	"github.com/chainfolio/chainfolio/internal/services"
	"github.com/chainfolio/chainfolio/internal/utils"
	"github.com/gin-gonic/gin"
)

type VerificationHandler struct {
	svc services.VerificationService
}

func NewVerificationHandler(svc services.VerificationService) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

// SaveVerificationRequest mirrors the provider callback payload. RawData is
// kept opaque for audit.
type SaveVerificationRequest struct {
	IsVerified       bool                `json:"is_verified"`
	VerifiedBy       string              `json:"verified_by" binding:"required"`
	VerificationDate string              `json:"verification_date"`
	VerifiedFields   []string            `json:"verified_fields"`
	Confidence       float64             `json:"confidence"`
	VerifiedData     models.VerifiedData `json:"verified_data"`
	RawData          json.RawMessage     `json:"raw_data"`
}

// Save replaces the resume's verification record wholesale with a
// provider-asserted result.
func (h *VerificationHandler) Save(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SaveVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "VerificationHandler.Save", "invalid request body", err))
		return
	}

	out, err := h.svc.Save(c.Request.Context(), userID, c.Param("id"), models.Verification{
		IsVerified:       req.IsVerified,
		VerifiedBy:       req.VerifiedBy,
		VerificationDate: req.VerificationDate,
		VerifiedFields:   req.VerifiedFields,
		Confidence:       req.Confidence,
		VerifiedData:     req.VerifiedData,
		RawData:          req.RawData,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *VerificationHandler) Revoke(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.Revoke(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

type RequestVerificationRequest struct {
	Method string `json:"method" binding:"required"` // digilocker|pan|phone_otp|email_otp
}

// Request queues an async verification flow; the worker pool completes it.
func (h *VerificationHandler) Request(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req RequestVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "VerificationHandler.Request", "invalid request body", err))
		return
	}

	reqID, err := h.svc.Request(c.Request.Context(), userID, c.Param("id"), verifier.Method(req.Method))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"request_id": reqID,
		"status":     "queued",
	})
}

// Matches returns the per-field trust-badge booleans for display.
func (h *VerificationHandler) Matches(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.Matches(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": out})
}

func (h *VerificationHandler) Audit(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.Audit(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": out})
}
