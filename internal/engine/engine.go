package engine

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/btree"

	"orderbook/internal/domain"
)

// Engine is the matching engine for a single instrument. It owns the
// bid/ask books, the order index, and the per-price aggregate, all
// guarded by a single coarse mutex — every operation takes the whole
// lock rather than fine-graining by price level.
type Engine struct {
	mu sync.Mutex

	bids *btree.BTreeG[*priceLevel]
	asks *btree.BTreeG[*priceLevel]

	orders    map[domain.OrderID]*orderSlot
	levelData map[domain.Price]*levelAggregate

	logger *slog.Logger
}

// New creates an empty Engine. logger may be nil, in which case a
// discarding logger is used.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		bids:      newBidTree(),
		asks:      newAskTree(),
		orders:    make(map[domain.OrderID]*orderSlot),
		levelData: make(map[domain.Price]*levelAggregate),
		logger:    logger,
	}
}

// Modification is the input to Modify: the id of the order to replace
// and the new side/price/quantity for its replacement.
type Modification struct {
	OrderID  domain.OrderID
	Side     domain.Side
	Price    domain.Price
	Quantity domain.Quantity
}

// Add admits order to the book and runs the matching loop, returning
// the trades produced. A duplicate id, a Market order with no opposite
// liquidity, a FillAndKill with nothing to cross, or a FillOrKill that
// cannot be fully covered are all rejections: Add returns (nil, false)
// and leaves the book unchanged.
func (e *Engine) Add(order *domain.Order) ([]domain.Trade, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addLocked(order)
}

func (e *Engine) addLocked(order *domain.Order) ([]domain.Trade, bool) {
	if _, exists := e.orders[order.ID()]; exists {
		return nil, false
	}

	// Step 1: market conversion.
	if order.Type() == domain.Market {
		if order.Side() == domain.Buy {
			best, ok := e.asks.Max()
			if !ok {
				return nil, false
			}
			order.PromoteToGoodTillCancel(best.price)
		} else {
			best, ok := e.bids.Max()
			if !ok {
				return nil, false
			}
			order.PromoteToGoodTillCancel(best.price)
		}
	}

	// Step 2: admission checks.
	switch order.Type() {
	case domain.FillAndKill:
		if !e.canMatch(order.Side(), order.Price()) {
			return nil, false
		}
	case domain.FillOrKill:
		if !e.canFullyFill(order.Side(), order.Price(), order.Initial()) {
			return nil, false
		}
	}

	// Step 3: insert.
	e.insert(order)

	// Step 4: match.
	trades := e.matchOrders()

	// IOC orders leave no resting remainder: if any quantity crossed but
	// some did not, cancel the remainder now. Cancel by the id of the
	// order just inserted rather than assuming it is still at the front
	// of its queue — another resting order ahead of it at the same
	// price would make that assumption wrong.
	if order.Type() == domain.FillAndKill {
		if _, stillResting := e.orders[order.ID()]; stillResting {
			e.cancelLocked(order.ID())
		}
	}

	return trades, true
}

// Cancel removes orderID from the book. Unknown ids are a silent no-op.
func (e *Engine) Cancel(orderID domain.OrderID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked(orderID)
}

// CancelBatch atomically cancels every id in ids under a single lock
// acquisition.
func (e *Engine) CancelBatch(ids []domain.OrderID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		e.cancelLocked(id)
	}
}

func (e *Engine) cancelLocked(orderID domain.OrderID) {
	slot, ok := e.orders[orderID]
	if !ok {
		return
	}
	delete(e.orders, orderID)

	order := slot.order
	tree := e.sideTree(order.Side())
	lvl, ok := tree.Get(&priceLevel{price: order.Price()})
	if ok {
		lvl.queue.Remove(slot.elem)
		dropIfEmpty(tree, lvl)
	}
	e.updateLevelDataCancel(order.Price(), order.Remaining())
}

// Modify replaces the order identified by mod.OrderID with a new
// side/price/quantity, preserving its original type. It runs as two
// separate critical sections — look up the existing type, then
// cancel-and-readd — rather than holding the lock across the whole
// operation; a racing cancel of the same id landing between the two
// sections is harmless, since Add on a fresh id always proceeds
// whether or not anything was cancelled first.
func (e *Engine) Modify(mod Modification) ([]domain.Trade, bool) {
	e.mu.Lock()
	slot, ok := e.orders[mod.OrderID]
	if !ok {
		e.mu.Unlock()
		return nil, false
	}
	existingType := slot.order.Type()
	e.mu.Unlock()

	e.Cancel(mod.OrderID)

	newOrder := domain.NewOrder(mod.OrderID, mod.Side, existingType, mod.Price, mod.Quantity)
	return e.Add(newOrder)
}

// Size returns the number of live orders on the book.
func (e *Engine) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.orders)
}

// LevelInfos returns an aggregated (price, total remaining quantity)
// snapshot for each resting price, bids from the best (highest) price
// down and asks from the best (lowest) price up.
func (e *Engine) LevelInfos() (bids, asks []domain.LevelInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.bids.Ascend(func(lvl *priceLevel) bool {
		bids = append(bids, levelInfoFor(lvl))
		return true
	})
	e.asks.Ascend(func(lvl *priceLevel) bool {
		asks = append(asks, levelInfoFor(lvl))
		return true
	})
	return bids, asks
}

func levelInfoFor(lvl *priceLevel) domain.LevelInfo {
	var total domain.Quantity
	for el := lvl.queue.Front(); el != nil; el = el.Next() {
		total += el.Value.(*domain.Order).Remaining()
	}
	return domain.LevelInfo{Price: lvl.price, Quantity: total}
}

// insert appends order to the tail of its side's queue at its limit
// price, recording its position in the id index and updating the
// per-price aggregate.
func (e *Engine) insert(order *domain.Order) {
	tree := e.sideTree(order.Side())
	lvl := levelAt(tree, order.Price())
	elem := lvl.queue.PushBack(order)
	e.orders[order.ID()] = &orderSlot{order: order, elem: elem}
	e.updateLevelDataAdd(order.Price(), order.Initial())
}
