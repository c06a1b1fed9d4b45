package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPriceData is returned for non-positive or non-finite closes.
	ErrInvalidPriceData = fmt.Errorf("%w: invalid price data", ErrInvalidInput)
	// ErrArithmeticHazard is returned when a zero reference close is reached mid-sequence.
	ErrArithmeticHazard = fmt.Errorf("%w: zero reference close", ErrInvalidPriceData)
	ErrFetchFailed      = errors.New("price series fetch failed")

	ErrPositionOpen     = errors.New("position already open")
	ErrNoPosition       = errors.New("no open position")
	ErrInsufficientCash = errors.New("insufficient cash for order")
)
