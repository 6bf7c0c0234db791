package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apppartner "github.com/erp/stockledger/internal/application/partner"
)

// CreateWarehouseRequest is the body of POST /warehouses
type CreateWarehouseRequest struct {
	Code      string `json:"code" binding:"required,max=50"`
	Name      string `json:"name" binding:"required,max=200"`
	Address   string `json:"address"`
	IsDefault bool   `json:"is_default"`
}

// CreateContactRequest is the body of POST /vendors and POST /clients
type CreateContactRequest struct {
	Code        string          `json:"code" binding:"required,max=50"`
	Name        string          `json:"name" binding:"required,max=200"`
	Email       string          `json:"email" binding:"omitempty,email"`
	Phone       string          `json:"phone" binding:"max=50"`
	Address     string          `json:"address"`
	CreditLimit decimal.Decimal `json:"credit_limit" binding:"gte=0"`
}

func (r CreateContactRequest) input() apppartner.CreateContactInput {
	return apppartner.CreateContactInput{
		Code:        r.Code,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		CreditLimit: r.CreditLimit,
	}
}

// PartnerHandler serves warehouses, vendors and clients
type PartnerHandler struct {
	BaseHandler
	partners *apppartner.PartnerService
}

// NewPartnerHandler creates a new PartnerHandler
func NewPartnerHandler(partners *apppartner.PartnerService) *PartnerHandler {
	return &PartnerHandler{partners: partners}
}

// CreateWarehouse handles POST /warehouses
func (h *PartnerHandler) CreateWarehouse(c *gin.Context) {
	var req CreateWarehouseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	wh, err := h.partners.CreateWarehouse(c.Request.Context(), apppartner.CreateWarehouseInput{
		Code:      req.Code,
		Name:      req.Name,
		Address:   req.Address,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, apppartner.ToWarehouseResponse(wh))
}

// ListWarehouses handles GET /warehouses
func (h *PartnerHandler) ListWarehouses(c *gin.Context) {
	warehouses, err := h.partners.ListWarehouses(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, apppartner.ToWarehouseResponses(warehouses), len(warehouses))
}

// CreateVendor handles POST /vendors
func (h *PartnerHandler) CreateVendor(c *gin.Context) {
	var req CreateContactRequest
	if !h.BindJSON(c, &req) {
		return
	}
	vendor, err := h.partners.CreateVendor(c.Request.Context(), req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, apppartner.ToContactResponse(vendor.ID, vendor.Contact))
}

// CreateClient handles POST /clients
func (h *PartnerHandler) CreateClient(c *gin.Context) {
	var req CreateContactRequest
	if !h.BindJSON(c, &req) {
		return
	}
	client, err := h.partners.CreateClient(c.Request.Context(), req.input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, apppartner.ToContactResponse(client.ID, client.Contact))
}
