package domain

import "errors"

// Sentinel errors returned by LedgerRepository implementations. The service
// layer maps them onto the API error taxonomy.
var (
	// ErrDuplicateTransaction is returned when recording an id that
	// already exists. Transaction ids are never reused.
	ErrDuplicateTransaction = errors.New("transaction id already recorded")

	// ErrTransactionNotFound is returned when flagging an id that was
	// never recorded.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrDuplicateUsername is returned by operator stores on a username
	// collision.
	ErrDuplicateUsername = errors.New("username already exists")
)
