package holdings

import "errors"

var (
	ErrHoldingNotFound = errors.New("Holding not found")
	ErrNameRequired    = errors.New("Name is required")
	ErrSymbolRequired  = errors.New("Symbol is required")
	ErrInvalidType     = errors.New("Invalid asset type")
)
