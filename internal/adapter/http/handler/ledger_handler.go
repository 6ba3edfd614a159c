package handler

import (
	"flow-ledger/internal/adapter/http/dto"
	"flow-ledger/internal/adapter/http/middleware"
	"flow-ledger/internal/core/ports"
	"flow-ledger/pkg/apperror"
	"flow-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles the transaction endpoints: writes over HMAC auth,
// reads over JWT.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// Record handles POST /api/v1/transactions.
func (h *LedgerHandler) Record(c *gin.Context) {
	caller := c.GetString(middleware.CtxCaller)
	if caller == "" {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.RecordTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.ledgerSvc.Record(c.Request.Context(), ports.RecordRequest{
		Caller:   caller,
		ID:       req.ID,
		Sender:   req.Sender,
		Receiver: req.Receiver,
		Amount:   req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromTransaction(*txn))
}

// Flag handles POST /api/v1/transactions/:id/flag.
func (h *LedgerHandler) Flag(c *gin.Context) {
	caller := c.GetString(middleware.CtxCaller)
	if caller == "" {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.FlagTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	txn, err := h.ledgerSvc.Flag(c.Request.Context(), ports.FlagRequest{
		Caller: caller,
		ID:     c.Param("id"),
		Reason: req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransaction(*txn))
}

// Get handles GET /api/v1/transactions/:id. Unknown ids return the zero
// record with 200, never 404.
func (h *LedgerHandler) Get(c *gin.Context) {
	txn, err := h.ledgerSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransaction(txn))
}

// TransactionsOf handles GET /api/v1/parties/:party/transactions.
func (h *LedgerHandler) TransactionsOf(c *gin.Context) {
	party := c.Param("party")
	ids, err := h.ledgerSvc.TransactionsOf(c.Request.Context(), party)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TransactionIDsResponse{Party: party, IDs: emptyIfNil(ids)})
}

// SentBy handles GET /api/v1/parties/:party/sent.
func (h *LedgerHandler) SentBy(c *gin.Context) {
	party := c.Param("party")
	ids, err := h.ledgerSvc.SentBy(c.Request.Context(), party)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TransactionIDsResponse{Party: party, IDs: emptyIfNil(ids)})
}

// TraceFlow handles GET /api/v1/parties/:party/trace.
func (h *LedgerHandler) TraceFlow(c *gin.Context) {
	party := c.Param("party")
	ids, err := h.ledgerSvc.TraceFlow(c.Request.Context(), party)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TransactionIDsResponse{Party: party, IDs: emptyIfNil(ids)})
}

// emptyIfNil keeps id lists encoding as [] rather than null.
func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
