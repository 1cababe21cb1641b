// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"fmt"
)

type causerSign string

const (
	// CauserFeePayer defines that the fee-payer caused this error type.
	CauserFeePayer causerSign = "fee-payer"
)

// InsufficientError is the error type to describe insufficient balance errors with details.
type InsufficientError struct {
	Need   uint64 // lamports.
	Have   uint64 // lamports.
	Causer causerSign
}

// NewInsufficientError is a constructor for InsufficientError.
func NewInsufficientError(need, have uint64) *InsufficientError {
	return &InsufficientError{need, have, CauserFeePayer}
}

// Error returns error description.
func (e *InsufficientError) Error() string {
	errMsg := fmt.Sprintf("insufficient native balance: Need - %d, Have - %d", e.Need, e.Have)
	if e.Causer != "" {
		errMsg += " (" + string(e.Causer) + ")"
	}

	return errMsg
}

// Shortfall returns amount of lamports missing.
func (e *InsufficientError) Shortfall() uint64 {
	if e.Have >= e.Need {
		return 0
	}

	return e.Need - e.Have
}

// Is implements comparator method for [errors] package.
func (e *InsufficientError) Is(target error) bool {
	_, ok := target.(*InsufficientError)
	return ok
}
