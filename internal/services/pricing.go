package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	dbm "storefront/internal/models/db_models"
	req "storefront/internal/models/request_models"
	"storefront/internal/repositories"
	"storefront/pkg/utils"
)

type pricedCart struct {
	Items    []dbm.OrderItem
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// priceCart recomputes the cart from catalog prices and checks the declared
// shipping charge against the rule table.
func priceCart(
	ctx context.Context,
	products repositories.ProductRepository,
	shipping *ShippingCalculator,
	items []req.CartItem,
	state string,
	declaredShipping decimal.Decimal,
) (*pricedCart, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty cart", utils.ErrInvalidRequest)
	}

	// Merge repeated lines so the stock check sees the full quantity.
	qty := make(map[uint64]int, len(items))
	var order []uint64
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", utils.ErrInvalidRequest)
		}
		if _, seen := qty[it.ProductID]; !seen {
			order = append(order, it.ProductID)
		}
		qty[it.ProductID] += it.Quantity
	}

	catalog, err := products.FindByIDs(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("%w: load products: %v", utils.ErrDatabaseError, err)
	}

	cart := &pricedCart{Subtotal: decimal.Zero}
	for _, id := range order {
		p, ok := catalog[id]
		if !ok || !p.IsActive {
			return nil, fmt.Errorf("%w: %d", utils.ErrProductNotFound, id)
		}
		if p.Stock < qty[id] {
			return nil, &utils.OutOfStockError{ProductID: id, Requested: qty[id], Available: p.Stock}
		}

		line := p.Price.Mul(decimal.NewFromInt(int64(qty[id])))
		cart.Items = append(cart.Items, dbm.OrderItem{
			ProductID: id,
			Name:      p.Name,
			Quantity:  qty[id],
			UnitPrice: p.Price,
			LineTotal: line,
		})
		cart.Subtotal = cart.Subtotal.Add(line)
	}

	cart.Shipping = shipping.Calculate(cart.Subtotal, state)
	if !shipping.Matches(declaredShipping, cart.Shipping) {
		return nil, fmt.Errorf("%w: declared %s computed %s", utils.ErrShippingMismatch, declaredShipping.StringFixed(2), cart.Shipping.StringFixed(2))
	}
	cart.Total = cart.Subtotal.Add(cart.Shipping)
	return cart, nil
}
