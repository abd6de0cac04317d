package store

import "errors"

var (
	// ErrCorruptedPoolDb For some reason, db on disk representation have changed
	ErrCorruptedPoolDb = errors.New("pool db is corrupted")

	// ErrInvestmentInfoNotFound The pool has not been initialized with an investment info yet
	ErrInvestmentInfoNotFound = errors.New("investment info not found")
)
