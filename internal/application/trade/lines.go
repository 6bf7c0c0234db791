package trade

import (
	"bytes"
	"slices"

	"github.com/google/uuid"

	"github.com/erp/stockledger/internal/domain/trade"
)

// byItem returns the lines ordered by item, so every transition takes stock row locks
// in the same order
func byItem[L any](lines []L, itemOf func(L) uuid.UUID) []L {
	sorted := slices.Clone(lines)
	slices.SortStableFunc(sorted, func(a, b L) int {
		x, y := itemOf(a), itemOf(b)
		return bytes.Compare(x[:], y[:])
	})
	return sorted
}

func purchaseLineItem(line *trade.PurchaseItem) uuid.UUID { return line.ItemID }

func salesLineItem(line *trade.SalesItem) uuid.UUID { return line.ItemID }

// salesLines points at every line of the order
func salesLines(order *trade.SalesOrder) []*trade.SalesItem {
	lines := make([]*trade.SalesItem, len(order.Items))
	for i := range order.Items {
		lines[i] = &order.Items[i]
	}
	return lines
}
