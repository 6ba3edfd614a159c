package handler

import (
	"flow-ledger/internal/adapter/http/dto"
	"flow-ledger/internal/adapter/http/middleware"
	"flow-ledger/internal/core/ports"
	"flow-ledger/pkg/apperror"
	"flow-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// KYCHandler handles the per-party KYC tag endpoints.
type KYCHandler struct {
	kycSvc ports.KYCService
}

// NewKYCHandler creates a new KYCHandler.
func NewKYCHandler(kycSvc ports.KYCService) *KYCHandler {
	return &KYCHandler{kycSvc: kycSvc}
}

// SetTag handles PUT /api/v1/parties/:party/kyc.
func (h *KYCHandler) SetTag(c *gin.Context) {
	caller := c.GetString(middleware.CtxCaller)
	if caller == "" {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.SetKycRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	party := c.Param("party")
	if err := h.kycSvc.SetTag(c.Request.Context(), caller, party, req.Tag); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.KycResponse{Party: party, Tag: req.Tag})
}

// GetTag handles GET /api/v1/parties/:party/kyc. Untagged parties return
// an empty tag with 200.
func (h *KYCHandler) GetTag(c *gin.Context) {
	party := c.Param("party")
	tag, err := h.kycSvc.GetTag(c.Request.Context(), party)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.KycResponse{Party: party, Tag: tag})
}
