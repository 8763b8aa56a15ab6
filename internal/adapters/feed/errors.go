package feed

import "errors"

// Sentinel kinds for feed errors.
var (
	ErrBufferFull = errors.New("feed broadcast buffer full")
	ErrStopped    = errors.New("feed hub stopped")
	ErrUpgrade    = errors.New("websocket upgrade failed")
)
