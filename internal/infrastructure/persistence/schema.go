package persistence

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/erp/stockledger/internal/domain/catalog"
	"github.com/erp/stockledger/internal/domain/finance"
	"github.com/erp/stockledger/internal/domain/inventory"
	"github.com/erp/stockledger/internal/domain/partner"
	"github.com/erp/stockledger/internal/domain/trade"
)

// Models lists every persisted entity in dependency order
func Models() []any {
	return []any{
		&catalog.Category{},
		&catalog.Item{},
		&partner.Warehouse{},
		&partner.Vendor{},
		&partner.Client{},
		&inventory.Stock{},
		&inventory.StockAlert{},
		&trade.PurchaseOrder{},
		&trade.PurchaseItem{},
		&trade.SalesOrder{},
		&trade.SalesItem{},
		&finance.Payment{},
		&finance.LedgerEntry{},
		&finance.ProfitLoss{},
	}
}

// AutoMigrate creates the schema from the entity tags.
// Postgres deployments use the SQL migrations instead; this serves SQLite and tests.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}
	return nil
}
