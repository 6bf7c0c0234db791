package router

import (
	"github.com/erp/stockledger/internal/interfaces/http/handler"
)

// Handlers are the resource handlers served under /api/v1
type Handlers struct {
	Catalog   *handler.CatalogHandler
	Partners  *handler.PartnerHandler
	Inventory *handler.InventoryHandler
	Purchases *handler.PurchaseOrderHandler
	Sales     *handler.SalesOrderHandler
	Finance   *handler.FinanceHandler
}

// Groups returns the route groups for every resource
func (h Handlers) Groups() []*DomainGroup {
	return []*DomainGroup{
		NewDomainGroup("/items").
			POST("", h.Catalog.CreateItem).
			GET("", h.Catalog.ListItems).
			GET("/:id", h.Catalog.GetItem),
		NewDomainGroup("/categories").
			POST("", h.Catalog.CreateCategory).
			GET("", h.Catalog.ListCategories),

		NewDomainGroup("/warehouses").
			POST("", h.Partners.CreateWarehouse).
			GET("", h.Partners.ListWarehouses),
		NewDomainGroup("/vendors").
			POST("", h.Partners.CreateVendor),
		NewDomainGroup("/clients").
			POST("", h.Partners.CreateClient),

		NewDomainGroup("/stock").
			GET("", h.Inventory.GetStock).
			GET("/low", h.Inventory.ListLowStock).
			POST("/adjust", h.Inventory.AdjustStock).
			POST("/receive", h.Inventory.ReceiveStock).
			PUT("/thresholds", h.Inventory.SetThresholds),
		NewDomainGroup("/alerts").
			GET("", h.Inventory.ListAlerts).
			POST("/reconcile", h.Inventory.ReconcileAlerts).
			POST("/:id/acknowledge", h.Inventory.AcknowledgeAlert).
			POST("/:id/resolve", h.Inventory.ResolveAlert),

		NewDomainGroup("/purchase-orders").
			POST("", h.Purchases.Create).
			GET("/:id", h.Purchases.Get).
			POST("/:id/items", h.Purchases.AddItem).
			PUT("/:id/items/:line_id", h.Purchases.UpdateItem).
			DELETE("/:id/items/:line_id", h.Purchases.RemoveItem).
			POST("/:id/receive", h.Purchases.Receive).
			POST("/:id/receipts", h.Purchases.RecordReceipt).
			POST("/:id/cancel", h.Purchases.Cancel).
			POST("/:id/recalculate", h.Purchases.Recalculate),

		NewDomainGroup("/sales-orders").
			POST("", h.Sales.Create).
			GET("/:id", h.Sales.Get).
			POST("/:id/confirm", h.Sales.Confirm).
			POST("/:id/ship", h.Sales.Ship).
			POST("/:id/deliver", h.Sales.Deliver).
			POST("/:id/cancel", h.Sales.Cancel).
			PUT("/:id/discount", h.Sales.SetDiscount).
			POST("/:id/items", h.Sales.AddItem).
			PUT("/:id/items/:line_id", h.Sales.UpdateItemQuantity).
			DELETE("/:id/items/:line_id", h.Sales.RemoveItem),

		NewDomainGroup("/payments").
			POST("", h.Finance.CreatePayment),
		NewDomainGroup("/ledger").
			GET("/balance", h.Finance.LedgerBalance).
			GET("/entries", h.Finance.LedgerEntries),
		NewDomainGroup("/reports").
			GET("/profit-loss", h.Finance.ProfitLoss),
	}
}
