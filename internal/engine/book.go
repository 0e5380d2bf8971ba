// Package engine implements the price-time priority matching engine: the
// dual-sided price-ordered book, the order index, the cross-matching
// loop, and the background day-order pruner.
package engine

import (
	"container/list"

	"github.com/google/btree"

	"orderbook/internal/domain"
)

// priceLevel is one resting price on one side of the book: the price
// itself and a FIFO queue of orders resting at that price (time
// priority within the level). Queue order is maintained with
// container/list so that removing an order from the middle of the
// queue is O(1) and does not invalidate the handles of any other
// order at that level.
type priceLevel struct {
	price domain.Price
	queue *list.List // of *domain.Order
}

// bidLess orders the bid side by price descending, so Min() on the
// tree yields the best (highest) bid.
func bidLess(a, b *priceLevel) bool {
	return a.price > b.price
}

// askLess orders the ask side by price ascending, so Min() on the
// tree yields the best (lowest) ask.
func askLess(a, b *priceLevel) bool {
	return a.price < b.price
}

const btreeDegree = 32

func newBidTree() *btree.BTreeG[*priceLevel] {
	return btree.NewG[*priceLevel](btreeDegree, bidLess)
}

func newAskTree() *btree.BTreeG[*priceLevel] {
	return btree.NewG[*priceLevel](btreeDegree, askLess)
}

// orderSlot is the value stored in the id index: the order itself and
// the stable handle (list.Element) into whichever price-level queue
// currently holds it.
type orderSlot struct {
	order *domain.Order
	elem  *list.Element
}

// levelAggregate is the per-price (count, total remaining) summary,
// aggregated across both sides at a price, since a price may
// transiently carry both a resting bid and a resting ask before the
// match loop clears the cross.
type levelAggregate struct {
	count          int
	totalRemaining domain.Quantity
}

// sideTree returns the tree for side.
func (e *Engine) sideTree(side domain.Side) *btree.BTreeG[*priceLevel] {
	if side == domain.Buy {
		return e.bids
	}
	return e.asks
}

// levelAt returns the priceLevel for p on side, creating and
// inserting an empty one if absent.
func levelAt(tree *btree.BTreeG[*priceLevel], p domain.Price) *priceLevel {
	lvl, ok := tree.Get(&priceLevel{price: p})
	if ok {
		return lvl
	}
	lvl = &priceLevel{price: p, queue: list.New()}
	tree.ReplaceOrInsert(lvl)
	return lvl
}

// dropIfEmpty removes the price-level row from tree iff its queue is
// empty — empty price levels are removed eagerly rather than left as
// dangling rows.
func dropIfEmpty(tree *btree.BTreeG[*priceLevel], lvl *priceLevel) {
	if lvl.queue.Len() == 0 {
		tree.Delete(lvl)
	}
}
