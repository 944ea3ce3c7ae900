// Package pricing computes order totals from line items and their extra
// selections. It is pure: no I/O, no clock, no state.
package pricing

import (
	"fmt"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// Total returns the order total in integer currency units:
//
//	Σ over items of unitPrice*qty + (Σ over extras of extraPrice*extraQty)*qty
//
// Extras are priced per unit of the parent item, so their subtotal is
// multiplied by the item quantity. An item with no extras contributes
// unitPrice*qty only.
func Total(items []models.OrderItem) (int64, error) {
	var total int64
	for i, item := range items {
		if item.Qty <= 0 {
			return 0, models.Validationf(fmt.Sprintf("items[%d].qty", i), "must be positive, got %d", item.Qty)
		}
		if item.UnitPrice < 0 {
			return 0, models.Validationf(fmt.Sprintf("items[%d].unit_price", i), "must not be negative, got %d", item.UnitPrice)
		}
		var extras int64
		for j, ex := range item.Extras {
			if ex.Qty <= 0 {
				return 0, models.Validationf(fmt.Sprintf("items[%d].extras[%d].qty", i, j), "must be positive, got %d", ex.Qty)
			}
			if ex.Price < 0 {
				return 0, models.Validationf(fmt.Sprintf("items[%d].extras[%d].price", i, j), "must not be negative, got %d", ex.Price)
			}
			extras += ex.Price * int64(ex.Qty)
		}
		total += (item.UnitPrice + extras) * int64(item.Qty)
	}
	return total, nil
}
