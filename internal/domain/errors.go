package domain

import "errors"

// Sentinel errors for malformed input. These are surfaced by
// internal/driver while parsing the line-oriented event format; the
// engine itself never returns them — its own rejections (duplicate
// id, failed admission, unknown id on cancel/modify) are normal,
// non-error return values, not parse failures.
var (
	ErrMalformedLine       = errors.New("malformed input line")
	ErrUnknownSide         = errors.New("unknown side")
	ErrUnknownOrderType    = errors.New("unknown order type")
	ErrNegativeNumeric     = errors.New("negative numeric value")
	ErrMisplacedResult     = errors.New("result line is not the last non-empty line")
	ErrMissingResult       = errors.New("input ended without a result line")
	ErrResultCountMismatch = errors.New("terminal counts do not match the book")
)
