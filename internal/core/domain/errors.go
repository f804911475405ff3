package domain

import "errors"

var ErrAccountNotFound = errors.New("account not found")
var ErrItemNotFound = errors.New("item not found")
var ErrCourseNotFound = errors.New("course not found")
var ErrInsufficientFunds = errors.New("insufficient funds")
var ErrDuplicateEntitlement = errors.New("entitlement already exists")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")

// ErrStoreUnavailable signals that the persistence layer could not be
// reached. It is always surfaced to the caller; the ledger never substitutes
// fabricated data for it.
var ErrStoreUnavailable = errors.New("store unavailable")
