package core

import "errors"

// Common errors.
var (
	ErrNotFound         = errors.New("document not found")
	ErrReadOnly         = errors.New("repository is in read-only mode")
	ErrEmptyID          = errors.New("document ID cannot be empty")
	ErrNotWatchable     = errors.New("repository does not support watching")
	ErrNotSyncable      = errors.New("repository does not support synchronization")
	ErrNotTransactional = errors.New("repository does not support transactions")
)
