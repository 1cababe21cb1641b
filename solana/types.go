// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package solana

import (
	"context"
	"errors"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
)

// LamportsPerSOL defines amount of lamports in one SOL.
const LamportsPerSOL uint64 = 1_000_000_000

// SignatureFee defines network fee in lamports charged per transaction signature.
const SignatureFee uint64 = 5000

var (
	// ErrUserRejected defines that the wallet owner declined to sign a transaction.
	ErrUserRejected = errors.New("transaction rejected by user")
	// ErrConfirmationTimeout defines that the network did not confirm a transaction in time.
	ErrConfirmationTimeout = errors.New("transaction confirmation timeout")
	// ErrNetwork defines transport level failure while talking to the ledger.
	ErrNetwork = errors.New("ledger network error")
	// ErrProgramRejected defines that an on-chain program or the ledger itself refused the transaction.
	ErrProgramRejected = errors.New("transaction rejected by program")
)

// LedgerClient describes network RPC capabilities required to issue a token.
type LedgerClient interface {
	// GetBalance returns balance of the address in lamports.
	GetBalance(ctx context.Context, address common.PublicKey) (uint64, error)
	// GetLatestBlockhash returns base58 encoded recent blockhash.
	GetLatestBlockhash(ctx context.Context) (string, error)
	// GetMinimumBalanceForRentExemption returns rent exempt minimum in lamports for account of size bytes.
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)
	// SendTransaction submits fully signed transaction, returns its signature.
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	// ConfirmTransaction blocks until the transaction is confirmed.
	// Returns ErrConfirmationTimeout wrapped error if the client gives up waiting.
	ConfirmTransaction(ctx context.Context, signature string) error
}

// Signer describes wallet capability: exposes fee payer address and
// signs with it and submits transactions through provided client.
// Transactions handed to the Signer may already carry other signatures.
type Signer interface {
	PublicKey() common.PublicKey
	SendTransaction(ctx context.Context, tx types.Transaction, client LedgerClient) (string, error)
}

// ProgramError describes transaction failure reported by the ledger with details.
type ProgramError struct {
	Detail string
}

// Error returns error description.
func (e *ProgramError) Error() string {
	return ErrProgramRejected.Error() + ": " + e.Detail
}

// Is implements comparator method for [errors] package.
func (e *ProgramError) Is(target error) bool {
	return target == ErrProgramRejected
}

// NewProgramError is a constructor for ProgramError.
func NewProgramError(detail string) *ProgramError {
	return &ProgramError{Detail: detail}
}
