package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appfin "github.com/erp/stockledger/internal/application/finance"
	"github.com/erp/stockledger/internal/domain/finance"
)

// CreatePaymentRequest is the body of POST /payments
type CreatePaymentRequest struct {
	VendorID        *uuid.UUID      `json:"vendor_id"`
	ClientID        *uuid.UUID      `json:"client_id"`
	Amount          decimal.Decimal `json:"amount" binding:"gt=0"`
	Type            string          `json:"type" binding:"required,oneof=DEBIT CREDIT"`
	Method          string          `json:"method" binding:"required"`
	PaymentDate     string          `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Description     string          `json:"description"`
}

// FinanceHandler serves payments, ledger totals and profit and loss reports
type FinanceHandler struct {
	BaseHandler
	payments *appfin.PaymentService
	ledger   *appfin.LedgerService
	pnl      *appfin.ProfitLossService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(payments *appfin.PaymentService, ledger *appfin.LedgerService, pnl *appfin.ProfitLossService) *FinanceHandler {
	return &FinanceHandler{payments: payments, ledger: ledger, pnl: pnl}
}

// CreatePayment handles POST /payments
func (h *FinanceHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}
	paymentDate, err := dateOrToday(req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "payment_date must be a date in YYYY-MM-DD format")
		return
	}
	payment, err := h.payments.CreatePayment(c.Request.Context(), appfin.CreatePaymentInput{
		VendorID:        req.VendorID,
		ClientID:        req.ClientID,
		Amount:          req.Amount,
		Type:            finance.PaymentType(req.Type),
		Method:          finance.PaymentMethod(req.Method),
		PaymentDate:     paymentDate,
		ReferenceNumber: req.ReferenceNumber,
		Description:     req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appfin.ToPaymentResponse(payment))
}

// LedgerBalanceResponse reports ledger totals over a period
type LedgerBalanceResponse struct {
	Start        string          `json:"start"`
	End          string          `json:"end"`
	TotalDebits  decimal.Decimal `json:"total_debits"`
	TotalCredits decimal.Decimal `json:"total_credits"`
	Balance      decimal.Decimal `json:"balance"`
}

// LedgerBalance handles GET /ledger/balance?start&end
func (h *FinanceHandler) LedgerBalance(c *gin.Context) {
	start, end, ok := h.QueryPeriod(c)
	if !ok {
		return
	}
	summary, err := h.ledger.Summary(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LedgerBalanceResponse{
		Start:        start.Format(time.DateOnly),
		End:          end.Format(time.DateOnly),
		TotalDebits:  summary.TotalDebits,
		TotalCredits: summary.TotalCredits,
		Balance:      summary.Balance,
	})
}

// LedgerEntries handles GET /ledger/entries?start&end
func (h *FinanceHandler) LedgerEntries(c *gin.Context) {
	start, end, ok := h.QueryPeriod(c)
	if !ok {
		return
	}
	entries, err := h.ledger.ListEntries(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, appfin.ToLedgerEntryResponses(entries), len(entries))
}

// ProfitLoss handles GET /reports/profit-loss?start&end.
// The report is recomputed and stored on every call.
func (h *FinanceHandler) ProfitLoss(c *gin.Context) {
	start, end, ok := h.QueryPeriod(c)
	if !ok {
		return
	}
	report, err := h.pnl.ComputeProfitLoss(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, appfin.ToProfitLossResponse(report))
}
