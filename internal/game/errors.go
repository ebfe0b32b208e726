package game

import "errors"

var (
	ErrInsufficientFunds = errors.New("not enough clicks")
	ErrUnknownUpgrade    = errors.New("unknown upgrade")
	ErrInvalidNickname   = errors.New("nickname must be 1-20 characters")
)
