package trade

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/domain/catalog"
	"github.com/erp/stockledger/internal/domain/partner"
	"github.com/erp/stockledger/internal/domain/shared"
	"github.com/erp/stockledger/internal/domain/trade"
)

// SalesService drives sales orders and keeps their reservations in step with the stock ledger
type SalesService struct {
	scope          TransactionScope
	orders         trade.SalesOrderRepository
	clients        partner.ClientRepository
	items          catalog.ItemRepository
	stock          StockLedger
	ledger         LedgerRecorder
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSalesService creates a new SalesService
func NewSalesService(
	scope TransactionScope,
	orders trade.SalesOrderRepository,
	clients partner.ClientRepository,
	items catalog.ItemRepository,
	stock StockLedger,
	ledger LedgerRecorder,
	logger *zap.Logger,
) *SalesService {
	return &SalesService{
		scope:   scope,
		orders:  orders,
		clients: clients,
		items:   items,
		stock:   stock,
		ledger:  ledger,
		logger:  logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SalesService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateSalesOrder creates a PENDING order and reserves every line.
// Reservations and the order commit together; if any line cannot be reserved nothing is kept.
func (s *SalesService) CreateSalesOrder(ctx context.Context, input CreateSalesOrderInput) (*trade.SalesOrder, error) {
	if _, err := s.clients.FindByID(ctx, input.ClientID); err != nil {
		return nil, err
	}

	order, err := trade.NewSalesOrder(input.OrderNumber, input.ClientID, input.OrderDate)
	if err != nil {
		return nil, err
	}
	if input.WarehouseID != nil {
		if err := order.SetWarehouse(*input.WarehouseID); err != nil {
			return nil, err
		}
	}
	order.Notes = input.Notes
	for _, line := range input.Items {
		if err := s.requireItem(ctx, line.ItemID); err != nil {
			return nil, err
		}
		if _, err := order.AddItem(line.ItemID, line.Quantity, line.UnitPrice, line.DiscountPercentage); err != nil {
			return nil, err
		}
	}
	if !input.DiscountAmount.IsZero() {
		if err := order.SetDiscount(input.DiscountAmount); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(ctx context.Context) error {
		for _, line := range byItem(salesLines(order), salesLineItem) {
			if err := s.reserveLine(ctx, order, line, line.Quantity); err != nil {
				return err
			}
		}
		return s.orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, order)

	s.logger.Info("sales order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.TotalAmount.String()),
	)
	return order, nil
}

// GetSalesOrder returns an order with its lines
func (s *SalesService) GetSalesOrder(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	return s.orders.FindByID(ctx, id)
}

// ConfirmSalesOrder moves a PENDING order to CONFIRMED
func (s *SalesService) ConfirmSalesOrder(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	order, err := s.update(ctx, id, func(_ context.Context, order *trade.SalesOrder) error {
		return order.Confirm()
	})
	if err != nil {
		return nil, err
	}
	s.logTransition(order)
	return order, nil
}

// ShipSalesOrder takes the goods out of stock and moves the order to SHIPPED
func (s *SalesService) ShipSalesOrder(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	return s.fulfil(ctx, id, trade.SalesOrderStatusShipped)
}

// DeliverSalesOrder moves the order to DELIVERED, taking the goods out of stock if it never shipped
func (s *SalesService) DeliverSalesOrder(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	return s.fulfil(ctx, id, trade.SalesOrderStatusDelivered)
}

// CancelSalesOrder releases every reservation the order holds and cancels it
func (s *SalesService) CancelSalesOrder(ctx context.Context, id uuid.UUID, reason string) (*trade.SalesOrder, error) {
	order, err := s.update(ctx, id, func(ctx context.Context, order *trade.SalesOrder) error {
		if !order.Status.CanTransitionTo(trade.SalesOrderStatusCancelled) {
			return shared.NewInvalidTransitionError(order.Status, trade.SalesOrderStatusCancelled)
		}
		for _, line := range byItem(order.ReservedLines(), salesLineItem) {
			if _, err := s.stock.Release(ctx, line.ItemID, *line.ReservedWarehouseID, line.ReservedQuantity); err != nil {
				return err
			}
			if err := order.ClearReservation(line.ID); err != nil {
				return err
			}
		}
		return order.Cancel(reason)
	})
	if err != nil {
		return nil, err
	}
	s.logTransition(order)
	return order, nil
}

// AddItem appends a line to a PENDING or CONFIRMED order and reserves it
func (s *SalesService) AddItem(ctx context.Context, orderID uuid.UUID, input SalesLineInput) (*trade.SalesOrder, error) {
	if err := s.requireItem(ctx, input.ItemID); err != nil {
		return nil, err
	}
	return s.update(ctx, orderID, func(ctx context.Context, order *trade.SalesOrder) error {
		line, err := order.AddItem(input.ItemID, input.Quantity, input.UnitPrice, input.DiscountPercentage)
		if err != nil {
			return err
		}
		return s.reserveLine(ctx, order, line, line.Quantity)
	})
}

// UpdateItemQuantity changes a line quantity and moves its reservation by the difference.
// An unchanged quantity returns the order as is.
func (s *SalesService) UpdateItemQuantity(ctx context.Context, orderID, lineID uuid.UUID, qty decimal.Decimal) (*trade.SalesOrder, error) {
	var previous decimal.Decimal
	order, err := s.update(ctx, orderID, func(ctx context.Context, order *trade.SalesOrder) error {
		line := order.GetItem(lineID)
		if line == nil {
			return shared.NewNotFoundError("sales item", lineID)
		}
		previous = line.Quantity

		changed, err := order.UpdateItemQuantity(lineID, qty)
		if err != nil {
			return err
		}
		if !changed {
			return errUnchanged
		}

		warehouseID, err := s.lineWarehouse(ctx, order, line)
		if err != nil {
			return err
		}
		held := decimal.Zero
		if line.ReservedWarehouseID != nil && *line.ReservedWarehouseID == warehouseID {
			held = line.ReservedQuantity
		}
		if qty.GreaterThan(held) {
			stock, err := s.stock.GetStock(ctx, line.ItemID, warehouseID)
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewInsufficientStockError(decimal.Zero, qty)
			}
			if err != nil {
				return err
			}
			if stock.AvailableQuantity.Add(held).LessThan(qty) {
				return shared.NewInsufficientStockError(stock.AvailableQuantity.Add(held), qty)
			}
		}

		diff := qty.Sub(held)
		switch {
		case diff.IsPositive():
			if _, err := s.stock.Reserve(ctx, line.ItemID, warehouseID, diff); err != nil {
				return err
			}
		case diff.IsNegative():
			if _, err := s.stock.Release(ctx, line.ItemID, warehouseID, diff.Neg()); err != nil {
				return err
			}
		}
		return order.RecordReservation(line.ID, warehouseID, qty)
	})
	if err != nil || previous.Equal(qty) {
		return order, err
	}
	s.logger.Info("sales line quantity changed",
		zap.String("order_id", order.ID.String()),
		zap.String("line_id", lineID.String()),
		zap.String("from", previous.String()),
		zap.String("to", qty.String()),
	)
	return order, nil
}

// RemoveItem drops a line from a PENDING or CONFIRMED order and releases its reservation
func (s *SalesService) RemoveItem(ctx context.Context, orderID, lineID uuid.UUID) (*trade.SalesOrder, error) {
	return s.update(ctx, orderID, func(ctx context.Context, order *trade.SalesOrder) error {
		removed, err := order.RemoveItem(lineID)
		if err != nil {
			return err
		}
		if removed.ReservedWarehouseID != nil && removed.ReservedQuantity.IsPositive() {
			if _, err := s.stock.Release(ctx, removed.ItemID, *removed.ReservedWarehouseID, removed.ReservedQuantity); err != nil {
				return err
			}
		}
		return nil
	})
}

// SetDiscount sets the order level discount and recomputes the total
func (s *SalesService) SetDiscount(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal) (*trade.SalesOrder, error) {
	return s.update(ctx, orderID, func(_ context.Context, order *trade.SalesOrder) error {
		return order.SetDiscount(amount)
	})
}

// fulfil reduces stock for every unshipped line when target is the first fulfilled status,
// then applies the transition and books the sale
func (s *SalesService) fulfil(ctx context.Context, id uuid.UUID, target trade.SalesOrderStatus) (*trade.SalesOrder, error) {
	order, err := s.update(ctx, id, func(ctx context.Context, order *trade.SalesOrder) error {
		reduce, err := order.NeedsStockReduction(target)
		if err != nil {
			return err
		}
		if reduce {
			for _, line := range byItem(order.LinesAwaitingShipment(), salesLineItem) {
				warehouseID, err := s.lineWarehouse(ctx, order, line)
				if err != nil {
					return err
				}
				if _, err := s.stock.ReduceOnFulfillment(ctx, line.ItemID, warehouseID, line.Quantity); err != nil {
					return err
				}
				if err := order.MarkLineShipped(line.ID); err != nil {
					return err
				}
			}
		}

		if target == trade.SalesOrderStatusShipped {
			err = order.Ship()
		} else {
			err = order.Deliver()
		}
		if err != nil {
			return err
		}
		return s.ledger.RecordSale(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	s.logTransition(order)
	return order, nil
}

// reserveLine reserves qty for the line and records where the reservation lives
func (s *SalesService) reserveLine(ctx context.Context, order *trade.SalesOrder, line *trade.SalesItem, qty decimal.Decimal) error {
	warehouseID, err := s.lineWarehouse(ctx, order, line)
	if err != nil {
		return err
	}
	if _, err := s.stock.Reserve(ctx, line.ItemID, warehouseID, qty); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewInsufficientStockError(decimal.Zero, qty)
		}
		return err
	}
	return order.RecordReservation(line.ID, warehouseID, qty)
}

// lineWarehouse is where the line's stock lives: its existing reservation, the
// order's warehouse, or the first warehouse holding stock for the item
func (s *SalesService) lineWarehouse(ctx context.Context, order *trade.SalesOrder, line *trade.SalesItem) (uuid.UUID, error) {
	if line.ReservedWarehouseID != nil {
		return *line.ReservedWarehouseID, nil
	}
	if order.WarehouseID != nil {
		return *order.WarehouseID, nil
	}
	stocks, err := s.stock.ListByItem(ctx, line.ItemID)
	if err != nil {
		return uuid.Nil, err
	}
	if len(stocks) == 0 {
		return uuid.Nil, shared.NewInsufficientStockError(decimal.Zero, line.Quantity)
	}
	return stocks[0].WarehouseID, nil
}

// errUnchanged ends an update that has nothing to write
var errUnchanged = errors.New("sales order unchanged")

// update locks the order, then runs fn and saves the order in one transaction.
// Stock calls fn makes with its ctx commit or roll back with the order.
func (s *SalesService) update(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, order *trade.SalesOrder) error) (*trade.SalesOrder, error) {
	var order *trade.SalesOrder
	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		var err error
		if order, err = s.orders.FindByIDForUpdate(ctx, id); err != nil {
			return err
		}
		if err := fn(ctx, order); err != nil {
			return err
		}
		return s.orders.SaveWithLock(ctx, order)
	})
	if errors.Is(err, errUnchanged) {
		return order, nil
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, order)
	return order, nil
}

func (s *SalesService) requireItem(ctx context.Context, itemID uuid.UUID) error {
	_, err := s.items.FindByID(ctx, itemID)
	return err
}

func (s *SalesService) logTransition(order *trade.SalesOrder) {
	s.logger.Info("sales order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", string(order.Status)),
	)
}

func (s *SalesService) publish(ctx context.Context, order *trade.SalesOrder) {
	events := order.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish sales order events", zap.Error(err))
	}
}
