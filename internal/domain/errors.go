package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrIneligibleMarket = errors.New("ineligible market")
	ErrInvalidStake     = errors.New("invalid stake")
	ErrRateLimited      = errors.New("rate limited")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrQuotaExhausted   = errors.New("request quota exhausted")
	ErrUnknownSport     = errors.New("unknown sport")
	ErrLockHeld         = errors.New("lock already held")
)
