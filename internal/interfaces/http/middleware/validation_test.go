package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/stockledger/internal/interfaces/http/dto"
)

type quantityInput struct {
	ItemID   string          `json:"item_id" binding:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity" binding:"gt=0"`
	Cost     decimal.Decimal `json:"cost" binding:"gte=0"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req quantityInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req.Quantity))
	})
	return router
}

func postJSON(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValidation_DecimalFields(t *testing.T) {
	router := newValidationRouter()

	tests := []struct {
		name     string
		body     string
		status   int
		badField string
	}{
		{"valid string decimals", `{"item_id":"7b0c7e4e-7d36-4c8e-9f3a-3f4c1b1e2a10","quantity":"2.5","cost":"0"}`, http.StatusOK, ""},
		{"valid numeric decimals", `{"item_id":"7b0c7e4e-7d36-4c8e-9f3a-3f4c1b1e2a10","quantity":3,"cost":1.25}`, http.StatusOK, ""},
		{"zero quantity", `{"item_id":"7b0c7e4e-7d36-4c8e-9f3a-3f4c1b1e2a10","quantity":"0","cost":"1"}`, http.StatusBadRequest, "quantity"},
		{"negative cost", `{"item_id":"7b0c7e4e-7d36-4c8e-9f3a-3f4c1b1e2a10","quantity":"1","cost":"-1"}`, http.StatusBadRequest, "cost"},
		{"bad uuid", `{"item_id":"nope","quantity":"1","cost":"1"}`, http.StatusBadRequest, "item_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, tt.body)
			assert.Equal(t, tt.status, w.Code)
			if tt.badField == "" {
				return
			}
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
			require.Len(t, resp.Error.Details, 1)
			assert.Equal(t, tt.badField, resp.Error.Details[0].Field)
		})
	}
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	router := newValidationRouter()

	w := postJSON(router, `{"quantity":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeBadRequest)
}
