package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrNoChannels rejects a fetch before any adapter runs when not a single
	// channel credential is configured.
	ErrNoChannels = errors.New("no channel credentials configured")
)
