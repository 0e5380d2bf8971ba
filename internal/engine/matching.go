package engine

import "orderbook/internal/domain"

// canMatch reports whether an incoming order on side, limited to
// price, could immediately trade against the opposite side's best
// price.
func (e *Engine) canMatch(side domain.Side, price domain.Price) bool {
	if side == domain.Buy {
		best, ok := e.asks.Min()
		return ok && best.price <= price
	}
	best, ok := e.bids.Min()
	return ok && best.price >= price
}

// canFullyFill reports whether the opposite side currently holds
// enough liquidity, at prices at-or-beyond the opposite best and
// within the submitter's limit, to cover qty in full. Used only for
// FillOrKill admission: a level counts toward coverage only when it is
// simultaneously at-or-beyond the opposite-best threshold *and* within
// the submitter's limit.
func (e *Engine) canFullyFill(side domain.Side, price domain.Price, qty domain.Quantity) bool {
	if !e.canMatch(side, price) {
		return false
	}

	var covered domain.Quantity
	done := false
	visit := func(lvl *priceLevel) bool {
		agg, ok := e.levelData[lvl.price]
		if !ok {
			return true
		}
		covered += agg.totalRemaining
		if covered >= qty {
			done = true
			return false
		}
		return true
	}

	// Walk the opposite side in price order from its best price,
	// stopping at the submitter's limit — every level visited is
	// already at-or-beyond the opposite-best threshold by
	// construction.
	if side == domain.Buy {
		e.asks.Ascend(func(lvl *priceLevel) bool {
			if lvl.price > price {
				return false
			}
			return visit(lvl)
		})
	} else {
		e.bids.Ascend(func(lvl *priceLevel) bool {
			if lvl.price < price {
				return false
			}
			return visit(lvl)
		})
	}
	return done
}

// matchOrders runs the cross-matching loop until no cross remains,
// executing price-time priority FIFO matches at each crossing level
// and returning every trade produced.
func (e *Engine) matchOrders() []domain.Trade {
	var trades []domain.Trade

	for {
		bidLvl, hasBid := e.bids.Min()
		askLvl, hasAsk := e.asks.Min()
		if !hasBid || !hasAsk {
			break
		}
		if bidLvl.price < askLvl.price {
			break
		}

		for bidLvl.queue.Len() > 0 && askLvl.queue.Len() > 0 {
			bidElem := bidLvl.queue.Front()
			askElem := askLvl.queue.Front()
			b := bidElem.Value.(*domain.Order)
			a := askElem.Value.(*domain.Order)

			q := b.Remaining()
			if a.Remaining() < q {
				q = a.Remaining()
			}

			b.Fill(q)
			a.Fill(q)

			if b.IsFilled() {
				bidLvl.queue.Remove(bidElem)
				delete(e.orders, b.ID())
			}
			if a.IsFilled() {
				askLvl.queue.Remove(askElem)
				delete(e.orders, a.ID())
			}

			trades = append(trades, domain.Trade{
				Bid: domain.TradeSide{OrderID: b.ID(), Price: b.Price(), Quantity: q},
				Ask: domain.TradeSide{OrderID: a.ID(), Price: a.Price(), Quantity: q},
			})

			e.updateLevelDataMatch(b.Price(), q, b.IsFilled())
			e.updateLevelDataMatch(a.Price(), q, a.IsFilled())
		}

		// The levelData rows need no erasure here: updateLevelDataMatch
		// already drops a row once its count reaches zero, and a row
		// whose price still holds orders on the other side must stay.
		if bidLvl.queue.Len() == 0 {
			e.bids.Delete(bidLvl)
		}
		if askLvl.queue.Len() == 0 {
			e.asks.Delete(askLvl)
		}
	}

	return trades
}

// updateLevelDataAdd increments the aggregate at price by (1, qty)
// when an order is admitted.
func (e *Engine) updateLevelDataAdd(price domain.Price, qty domain.Quantity) {
	agg, ok := e.levelData[price]
	if !ok {
		agg = &levelAggregate{}
		e.levelData[price] = agg
	}
	agg.count++
	agg.totalRemaining += qty
}

// updateLevelDataCancel decrements the aggregate at price by
// (1, remaining) when an order is cancelled, erasing the row once its
// count reaches zero.
func (e *Engine) updateLevelDataCancel(price domain.Price, remaining domain.Quantity) {
	agg, ok := e.levelData[price]
	if !ok {
		return
	}
	agg.count--
	agg.totalRemaining -= remaining
	if agg.count <= 0 {
		delete(e.levelData, price)
	}
}

// updateLevelDataMatch decrements the total remaining by q, and count
// by 1 iff the order at price fully filled, erasing the row once
// count reaches zero.
func (e *Engine) updateLevelDataMatch(price domain.Price, q domain.Quantity, fullyFilled bool) {
	agg, ok := e.levelData[price]
	if !ok {
		return
	}
	agg.totalRemaining -= q
	if fullyFilled {
		agg.count--
	}
	if agg.count <= 0 {
		delete(e.levelData, price)
	}
}
