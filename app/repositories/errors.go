package repositories

import "errors"

var (
	// ErrStockConflict means a conditional stock update matched no row: the
	// product is gone or its stock fell below the required minimum since it
	// was read.
	ErrStockConflict = errors.New("repositories: stock changed concurrently")

	// ErrInvalidAmount rejects zero or negative stock movements.
	ErrInvalidAmount = errors.New("repositories: stock amount must be positive")
)
