package driver

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"orderbook/internal/domain"
	"orderbook/internal/engine"
)

// Run reads the line-oriented event format from r, applies each event
// to e in order, and checks the terminal R line against e's final
// state. It writes one structured log line per applied event to
// logger (for adds and modifies, with the number of trades produced) —
// the format itself has no output besides the pass/fail outcome.
//
// Run returns domain.ErrMissingResult if the input ends without an R
// line, domain.ErrMisplacedResult if an R line is followed by further
// non-empty lines, domain.ErrResultCountMismatch if the terminal counts
// don't match the book, and any parse error from a malformed line. All
// of these are returned as plain errors; callers map them to a process
// exit code.
func Run(e *engine.Engine, r io.Reader, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	scanner := bufio.NewScanner(r)
	sawResult := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if sawResult {
			return domain.ErrMisplacedResult
		}

		cmd, err := parseLine(line)
		if err != nil {
			return fmt.Errorf("line %q: %w", line, err)
		}

		if cmd.kind == cmdResult {
			sawResult = true
			if err := checkResult(e, cmd); err != nil {
				return err
			}
			continue
		}

		applyCommand(e, cmd, logger)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if !sawResult {
		return domain.ErrMissingResult
	}
	return nil
}

func applyCommand(e *engine.Engine, cmd command, logger *slog.Logger) {
	switch cmd.kind {
	case cmdAdd:
		var order *domain.Order
		if cmd.typ == domain.Market {
			order = domain.NewMarketOrder(cmd.orderID, cmd.side, cmd.qty)
		} else {
			order = domain.NewOrder(cmd.orderID, cmd.side, cmd.typ, cmd.price, cmd.qty)
		}
		trades, ok := e.Add(order)
		logTrades(logger, "add", cmd.orderID, ok, trades)

	case cmdModify:
		trades, ok := e.Modify(engine.Modification{
			OrderID:  cmd.orderID,
			Side:     cmd.side,
			Price:    cmd.price,
			Quantity: cmd.qty,
		})
		logTrades(logger, "modify", cmd.orderID, ok, trades)

	case cmdCancel:
		e.Cancel(cmd.orderID)
		logger.Info("cancel", slog.Uint64("order_id", uint64(cmd.orderID)))
	}
}

func logTrades(logger *slog.Logger, op string, id domain.OrderID, ok bool, trades []domain.Trade) {
	logger.Info(op,
		slog.Uint64("order_id", uint64(id)),
		slog.Bool("admitted", ok),
		slog.Int("trade_count", len(trades)),
	)
}

// checkResult compares the terminal R line's expected counts against the
// engine's current state.
func checkResult(e *engine.Engine, cmd command) error {
	total := e.Size()
	bids, asks := e.LevelInfos()
	if total != cmd.total || len(bids) != cmd.bids || len(asks) != cmd.asks {
		return fmt.Errorf("%w: got (total=%d bids=%d asks=%d), want (total=%d bids=%d asks=%d)",
			domain.ErrResultCountMismatch, total, len(bids), len(asks), cmd.total, cmd.bids, cmd.asks)
	}
	return nil
}
