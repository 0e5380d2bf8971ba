package domain

// TradeSide is one leg of a trade: one of the two matched orders, that
// order's own limit price, and the quantity matched.
type TradeSide struct {
	OrderID  OrderID
	Price    Price
	Quantity Quantity
}

// Trade carries both legs of a single match. Each leg carries its own
// order's limit price, so the incoming order's leg shows its own limit
// (for a Market order, the repriced limit), not the counterparty's.
type Trade struct {
	Bid TradeSide
	Ask TradeSide
}
