// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package issuance

import (
	"errors"
	"fmt"

	"github.com/BoostyLabs/tokenlaunch/solana"
	"github.com/BoostyLabs/tokenlaunch/solana/fee"
)

// Kind defines stage of token issuance which failed.
type Kind int

const (
	// SignerUnavailable defines that no usable signer was provided.
	SignerUnavailable Kind = iota + 1
	// InvalidRequest defines that token creation request is malformed.
	InvalidRequest
	// InsufficientFunds defines that signer balance does not cover issuance cost.
	InsufficientFunds
	// FeePaymentFailed defines that service fee transaction was not settled.
	FeePaymentFailed
	// AddressDerivationFailed defines that mint keypair or derived addresses could not be produced.
	AddressDerivationFailed
	// TokenCreationFailed defines that token creation transaction was not settled.
	TokenCreationFailed
)

// String returns kind name.
func (k Kind) String() string {
	switch k {
	case SignerUnavailable:
		return "signer unavailable"
	case InvalidRequest:
		return "invalid request"
	case InsufficientFunds:
		return "insufficient funds"
	case FeePaymentFailed:
		return "fee payment failed"
	case AddressDerivationFailed:
		return "address derivation failed"
	case TokenCreationFailed:
		return "token creation failed"
	default:
		return "unknown"
	}
}

// Cause defines why a submitted transaction failed.
type Cause int

const (
	// NoCause is used by kinds which are not caused by transaction submission.
	NoCause Cause = iota
	// UserRejected defines that wallet owner declined to sign.
	UserRejected
	// NetworkTimeout defines transport failure or lost confirmation.
	NetworkTimeout
	// ProgramRejected defines that the ledger or an on-chain program refused the transaction.
	ProgramRejected
)

// String returns cause name.
func (c Cause) String() string {
	switch c {
	case NoCause:
		return "none"
	case UserRejected:
		return "user rejected"
	case NetworkTimeout:
		return "network timeout"
	case ProgramRejected:
		return "program rejected"
	default:
		return "unknown"
	}
}

// Error describes token issuance failure.
type Error struct {
	Kind  Kind
	Cause Cause

	// Required and Available are set for InsufficientFunds, in lamports.
	Required  uint64
	Available uint64

	// FeeSignature is the fee transaction signature if it was submitted.
	// Set on every error after fee submission, the fee may already be charged.
	FeeSignature string

	Detail string
	Err    error
}

// Error returns technical error description.
func (e *Error) Error() string {
	msg := "token issuance: " + e.Kind.String()
	if e.Cause != NoCause {
		msg += " (" + e.Cause.String() + ")"
	}
	if e.Kind == InsufficientFunds {
		msg += fmt.Sprintf(": required %d, available %d", e.Required, e.Available)
	}
	if e.FeeSignature != "" {
		msg += ", fee signature " + e.FeeSignature
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches target *Error by Kind, and by Cause if target sets it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind && (t.Cause == NoCause || t.Cause == e.Cause)
}

// Shortfall returns amount of lamports missing to cover issuance cost.
func (e *Error) Shortfall() uint64 {
	if e.Kind != InsufficientFunds || e.Available >= e.Required {
		return 0
	}

	return e.Required - e.Available
}

// FeeMayHaveLanded returns true if fee transaction was submitted but its confirmation was lost.
// Caller has to check FeeSignature on the ledger before retrying, otherwise the fee may be charged twice.
func (e *Error) FeeMayHaveLanded() bool {
	return e.Kind == FeePaymentFailed && e.Cause == NetworkTimeout && e.FeeSignature != ""
}

// FeeCharged returns true if the service fee is known to be paid.
func (e *Error) FeeCharged() bool {
	return e.FeeSignature != "" && (e.Kind == AddressDerivationFailed || e.Kind == TokenCreationFailed)
}

// UserMessage returns non-technical description of the failure.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case SignerUnavailable:
		return "Wallet is not connected. Connect a wallet and try again."
	case InvalidRequest:
		return "Token details are invalid: " + e.Detail + "."
	case InsufficientFunds:
		return fmt.Sprintf("Insufficient balance: %s required, %s available.",
			fee.Lamports(e.Required), fee.Lamports(e.Available))
	case FeePaymentFailed:
		switch {
		case e.Cause == UserRejected:
			return "You rejected the fee payment. Nothing was charged."
		case e.Cause == ProgramRejected:
			return "The network rejected the fee payment: " + e.Detail + "."
		case e.FeeMayHaveLanded():
			return "Fee payment was sent but not confirmed in time. Check transaction " + e.FeeSignature + " before retrying."
		default:
			return "Network issue, please retry. Nothing was charged."
		}
	case AddressDerivationFailed:
		return "Could not generate the token address, please retry." + e.paidNote()
	case TokenCreationFailed:
		switch e.Cause {
		case UserRejected:
			return "You rejected the token creation transaction." + e.paidNote()
		case ProgramRejected:
			return "The network rejected the token creation: " + e.Detail + "." + e.paidNote()
		default:
			return "Network issue while creating the token, please retry." + e.paidNote()
		}
	default:
		return "Token creation failed."
	}
}

// paidNote returns reminder that the fee is already paid.
func (e *Error) paidNote() string {
	if e.FeeSignature == "" {
		return ""
	}

	return " The service fee was already paid in transaction " + e.FeeSignature + "."
}

// newError returns Error of provided kind with cause classified from err.
func newError(kind Kind, err error) *Error {
	cause, detail := classify(err)

	return &Error{
		Kind:   kind,
		Cause:  cause,
		Detail: detail,
		Err:    err,
	}
}

// classify maps collaborator error to the failure cause.
// Unknown errors are treated as network issues.
func classify(err error) (Cause, string) {
	var programErr *solana.ProgramError
	switch {
	case errors.Is(err, solana.ErrUserRejected):
		return UserRejected, ""
	case errors.As(err, &programErr):
		return ProgramRejected, programErr.Detail
	case errors.Is(err, solana.ErrProgramRejected):
		return ProgramRejected, err.Error()
	default:
		return NetworkTimeout, ""
	}
}
