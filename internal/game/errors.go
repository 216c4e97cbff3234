package game

import "errors"

var (
	ErrNoGame          = errors.New("no game in progress")
	ErrGameOver        = errors.New("game over")
	ErrNotYourPiece    = errors.New("no piece of the player to move on that cell")
	ErrNoSelection     = errors.New("no piece selected")
	ErrChoicePending   = errors.New("waiting for a choice")
	ErrNoChoicePending = errors.New("no choice pending")
	ErrInvalidChoice   = errors.New("invalid choice")
	ErrInvalidRecord   = errors.New("invalid game record")
	ErrUnknownVariant  = errors.New("unknown variant")
)
