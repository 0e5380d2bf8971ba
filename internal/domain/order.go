package domain

// Order is the mutable state of one live order. Id, Side and
// InitialQuantity never change after construction. Type changes exactly
// once, for a Market order promoted to GoodTillCancel on admission.
// Price changes exactly once for the same reason.
type Order struct {
	id                OrderID
	side              Side
	orderType         OrderType
	price             Price
	initialQuantity   Quantity
	remainingQuantity Quantity
}

// NewOrder constructs a resting-eligible order with its full initial
// quantity still remaining.
func NewOrder(id OrderID, side Side, orderType OrderType, price Price, quantity Quantity) *Order {
	return &Order{
		id:                id,
		side:              side,
		orderType:         orderType,
		price:             price,
		initialQuantity:   quantity,
		remainingQuantity: quantity,
	}
}

// NewMarketOrder constructs a Market order. Its price is meaningless
// until PromoteToGoodTillCancel assigns the repriced limit.
func NewMarketOrder(id OrderID, side Side, quantity Quantity) *Order {
	return NewOrder(id, side, Market, 0, quantity)
}

func (o *Order) ID() OrderID         { return o.id }
func (o *Order) Side() Side          { return o.side }
func (o *Order) Type() OrderType     { return o.orderType }
func (o *Order) Price() Price        { return o.price }
func (o *Order) Initial() Quantity   { return o.initialQuantity }
func (o *Order) Remaining() Quantity { return o.remainingQuantity }

// Filled returns the quantity already matched.
func (o *Order) Filled() Quantity {
	return o.initialQuantity - o.remainingQuantity
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.remainingQuantity == 0
}

// Fill reduces the remaining quantity by q. q must not exceed the
// current remaining quantity; violating this panics rather than
// returning an error, since it can only be reached by a bug in the
// matching loop itself, never by bad caller input.
func (o *Order) Fill(q Quantity) {
	if q > o.remainingQuantity {
		panic("domain: Fill quantity exceeds remaining quantity")
	}
	o.remainingQuantity -= q
}

// PromoteToGoodTillCancel reprices a Market order to a limit price and
// retags it as GoodTillCancel so it behaves like any other resting
// order for the remainder of the match. Calling this on a non-Market
// order is a bug in the caller and panics.
func (o *Order) PromoteToGoodTillCancel(price Price) {
	if o.orderType != Market {
		panic("domain: PromoteToGoodTillCancel called on a non-Market order")
	}
	o.price = price
	o.orderType = GoodTillCancel
}
