package domain

import "errors"

var (
	ErrMissingRate = errors.New("missing rate")
	ErrEmptyRates  = errors.New("rate table is empty")
	ErrInvalidRate = errors.New("invalid rate")
)
