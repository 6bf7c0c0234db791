package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appinv "github.com/erp/stockledger/internal/application/inventory"
	"github.com/erp/stockledger/internal/domain/catalog"
	"github.com/erp/stockledger/internal/domain/partner"
	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/erp/stockledger/internal/domain/trade"
)

// PurchaseService drives purchase orders through receipt and books goods into stock
type PurchaseService struct {
	scope          TransactionScope
	orders         trade.PurchaseOrderRepository
	vendors        partner.VendorRepository
	items          catalog.ItemRepository
	stock          StockLedger
	ledger         LedgerRecorder
	warehouses     *WarehousePolicy
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(
	scope TransactionScope,
	orders trade.PurchaseOrderRepository,
	vendors partner.VendorRepository,
	items catalog.ItemRepository,
	stock StockLedger,
	ledger LedgerRecorder,
	warehouses *WarehousePolicy,
	logger *zap.Logger,
) *PurchaseService {
	return &PurchaseService{
		scope:      scope,
		orders:     orders,
		vendors:    vendors,
		items:      items,
		stock:      stock,
		ledger:     ledger,
		warehouses: warehouses,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreatePurchaseOrder creates a PENDING order with its lines
func (s *PurchaseService) CreatePurchaseOrder(ctx context.Context, input CreatePurchaseOrderInput) (*trade.PurchaseOrder, error) {
	if _, err := s.vendors.FindByID(ctx, input.VendorID); err != nil {
		return nil, err
	}

	order, err := trade.NewPurchaseOrder(input.OrderNumber, input.VendorID, input.OrderDate)
	if err != nil {
		return nil, err
	}
	if input.WarehouseID != nil {
		if err := order.SetWarehouse(*input.WarehouseID); err != nil {
			return nil, err
		}
	}
	order.ExpectedDate = input.ExpectedDate
	order.Notes = input.Notes

	for _, line := range input.Items {
		if err := s.requireItem(ctx, line.ItemID); err != nil {
			return nil, err
		}
		if _, err := order.AddItem(line.ItemID, line.Quantity, line.UnitCost, line.Costs()); err != nil {
			return nil, err
		}
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, order)

	s.logger.Info("purchase order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.TotalAmount.String()),
	)
	return order, nil
}

// GetPurchaseOrder returns an order with its lines
func (s *PurchaseService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.orders.FindByID(ctx, id)
}

// AddItem appends a line to a PENDING order
func (s *PurchaseService) AddItem(ctx context.Context, orderID uuid.UUID, line PurchaseLineInput) (*trade.PurchaseOrder, error) {
	if err := s.requireItem(ctx, line.ItemID); err != nil {
		return nil, err
	}
	return s.edit(ctx, orderID, func(order *trade.PurchaseOrder) error {
		_, err := order.AddItem(line.ItemID, line.Quantity, line.UnitCost, line.Costs())
		return err
	})
}

// UpdateItem changes quantity and costs of a line on a PENDING order
func (s *PurchaseService) UpdateItem(ctx context.Context, orderID, lineID uuid.UUID, line PurchaseLineInput) (*trade.PurchaseOrder, error) {
	return s.edit(ctx, orderID, func(order *trade.PurchaseOrder) error {
		return order.UpdateItem(lineID, line.Quantity, line.UnitCost, line.Costs())
	})
}

// RemoveItem drops a line from a PENDING order
func (s *PurchaseService) RemoveItem(ctx context.Context, orderID, lineID uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.edit(ctx, orderID, func(order *trade.PurchaseOrder) error {
		return order.RemoveItem(lineID)
	})
}

// RecalculatePurchaseTotal recomputes every line and the order total, then persists them
func (s *PurchaseService) RecalculatePurchaseTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	if _, err := s.edit(ctx, orderID, func(order *trade.PurchaseOrder) error {
		total = order.RecalculateTotal()
		return nil
	}); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// RecordReceipt sets absolute received quantities per line and books the difference into stock
func (s *PurchaseService) RecordReceipt(ctx context.Context, orderID uuid.UUID, receipts []LineReceipt) (*trade.PurchaseOrder, error) {
	if len(receipts) == 0 {
		return nil, shared.NewValidationError("At least one line receipt is required")
	}
	return s.receive(ctx, orderID, func(order *trade.PurchaseOrder) error {
		for _, r := range receipts {
			if err := order.RecordReceipt(r.ItemLineID, r.ReceivedQuantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// ReceivePurchaseOrder receives every line in full and books the remainder into stock.
// On an order that is already RECEIVED it books whatever is still unbooked, usually nothing.
func (s *PurchaseService) ReceivePurchaseOrder(ctx context.Context, orderID uuid.UUID) (*trade.PurchaseOrder, error) {
	return s.receive(ctx, orderID, func(order *trade.PurchaseOrder) error {
		if order.Status == trade.PurchaseOrderStatusReceived {
			return nil
		}
		return order.ReceiveAll()
	})
}

// CancelPurchaseOrder cancels the order. Stock already booked stays booked.
func (s *PurchaseService) CancelPurchaseOrder(ctx context.Context, orderID uuid.UUID, reason string) (*trade.PurchaseOrder, error) {
	order, err := s.edit(ctx, orderID, func(order *trade.PurchaseOrder) error {
		return order.Cancel(reason)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("purchase order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("reason", reason),
	)
	return order, nil
}

// receive locks the order, applies the receipt, books every unbooked delta into stock
// and saves the order, all in one transaction. A concurrent receipt of the same order
// waits for the lock and then sees the deltas already booked.
func (s *PurchaseService) receive(ctx context.Context, orderID uuid.UUID, apply func(*trade.PurchaseOrder) error) (*trade.PurchaseOrder, error) {
	var (
		order       *trade.PurchaseOrder
		warehouseID uuid.UUID
	)
	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orders.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if warehouseID, err = s.pinWarehouse(ctx, order); err != nil {
			return err
		}
		if err := apply(order); err != nil {
			return err
		}
		if err := s.bookReceipts(ctx, order, warehouseID); err != nil {
			return err
		}
		if err := s.orders.SaveWithLock(ctx, order); err != nil {
			return err
		}
		if order.Status == trade.PurchaseOrderStatusReceived {
			return s.ledger.RecordPurchase(ctx, order)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("purchase receipt rolled back",
			zap.String("order_id", orderID.String()),
			zap.String("code", shared.ErrorCode(err)),
			zap.Error(err),
		)
		return nil, err
	}
	s.publish(ctx, order)

	s.logger.Info("purchase receipt booked",
		zap.String("order_id", order.ID.String()),
		zap.String("status", string(order.Status)),
		zap.String("warehouse_id", warehouseID.String()),
	)
	return order, nil
}

// bookReceipts moves each line's unbooked received quantity into stock at landed cost
func (s *PurchaseService) bookReceipts(ctx context.Context, order *trade.PurchaseOrder, warehouseID uuid.UUID) error {
	for _, line := range byItem(order.LinesAwaitingStock(), purchaseLineItem) {
		delta := line.UnappliedQuantity()
		if _, err := s.stock.Receive(ctx, appinv.ReceiveStockInput{
			ItemID:      line.ItemID,
			WarehouseID: warehouseID,
			Quantity:    delta,
			UnitCost:    line.LandedCostPerUnit,
		}); err != nil {
			return err
		}
		if err := order.MarkApplied(line.ID, delta); err != nil {
			return err
		}
	}
	return nil
}

// pinWarehouse resolves the receiving warehouse and stores it on the order.
// A RECEIVED order keeps the warehouse it was received into.
func (s *PurchaseService) pinWarehouse(ctx context.Context, order *trade.PurchaseOrder) (uuid.UUID, error) {
	if order.Status == trade.PurchaseOrderStatusReceived {
		if order.WarehouseID == nil {
			return uuid.Nil, shared.NewValidationError("Received order has no warehouse")
		}
		return *order.WarehouseID, nil
	}
	if !order.Status.CanReceive() {
		return uuid.Nil, shared.NewInvalidTransitionError(order.Status, trade.PurchaseOrderStatusReceived)
	}
	warehouseID, err := s.warehouses.Resolve(ctx, order.WarehouseID)
	if err != nil {
		return uuid.Nil, err
	}
	if order.WarehouseID == nil {
		if err := order.SetWarehouse(warehouseID); err != nil {
			return uuid.Nil, err
		}
	}
	return warehouseID, nil
}

// edit locks the order, applies fn and saves it in one transaction
func (s *PurchaseService) edit(ctx context.Context, orderID uuid.UUID, fn func(*trade.PurchaseOrder) error) (*trade.PurchaseOrder, error) {
	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		var err error
		if order, err = s.orders.FindByIDForUpdate(ctx, orderID); err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}
		return s.orders.SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, order)
	return order, nil
}

func (s *PurchaseService) requireItem(ctx context.Context, itemID uuid.UUID) error {
	_, err := s.items.FindByID(ctx, itemID)
	return err
}

func (s *PurchaseService) publish(ctx context.Context, order *trade.PurchaseOrder) {
	events := order.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish purchase order events", zap.Error(err))
	}
}
