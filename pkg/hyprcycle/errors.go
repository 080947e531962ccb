package hyprcycle

import "errors"

var (
	ErrStoreUnavailable   = errors.New("state store unavailable, run init again")
	ErrStoreBusy          = errors.New("state store busy")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrExternalSetFailed  = errors.New("layout switch failed")
	ErrUninitialized      = errors.New("not initialized, run init first")
	ErrInvalidBurstWindow = errors.New("invalid burst window")
)
