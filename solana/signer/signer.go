// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package signer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/BoostyLabs/tokenlaunch/solana"
	"github.com/BoostyLabs/tokenlaunch/solana/txwire"
)

var (
	// ErrNotRequiredSigner defines that signer account is not among transaction signers.
	ErrNotRequiredSigner = errors.New("account is not a required signer")
	// ErrIncompleteSignatures defines that transaction still misses signatures after signing.
	ErrIncompleteSignatures = errors.New("transaction is not fully signed")
	// ErrInvalidKeypair defines that keypair file content is not a 64 bytes secret key.
	ErrInvalidKeypair = errors.New("invalid keypair")
)

// ApproveFunc decides whether the transaction may be signed, false rejects it.
type ApproveFunc func(tx types.Transaction) bool

// ApproveAll approves every transaction.
func ApproveAll(types.Transaction) bool { return true }

// Signer provides local keypair wallet: signs its own slot of provided
// transactions and submits them.
type Signer struct {
	account types.Account
	approve ApproveFunc
}

// ensures that Signer implements solana.Signer.
var _ solana.Signer = (*Signer)(nil)

// NewSigner is a constructor for Signer.
func NewSigner(account types.Account, approve ApproveFunc) *Signer {
	if approve == nil {
		approve = ApproveAll
	}

	return &Signer{
		account: account,
		approve: approve,
	}
}

// NewSignerFromKeypairFile reads keypair file in JSON byte array format and returns Signer for it.
func NewSignerFromKeypairFile(path string, approve ApproveFunc) (*Signer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var secret []byte
	var ints []int
	if err = json.Unmarshal(data, &ints); err != nil {
		return nil, errors.Join(ErrInvalidKeypair, err)
	}
	for idx, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w: byte out of range at %d", ErrInvalidKeypair, idx)
		}

		secret = append(secret, byte(v))
	}
	if len(secret) != 64 {
		return nil, fmt.Errorf("%w: want 64 bytes, got %d", ErrInvalidKeypair, len(secret))
	}

	account, err := types.AccountFromBytes(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidKeypair, err)
	}

	return NewSigner(account, approve), nil
}

// PublicKey returns signer address, zero address for nil signer.
func (signer *Signer) PublicKey() common.PublicKey {
	if signer == nil {
		return common.PublicKey{}
	}

	return signer.account.PublicKey
}

// Sign fills signer slot of the transaction, other slots are untouched.
func (signer *Signer) Sign(tx *types.Transaction) error {
	message, err := tx.Message.Serialize()
	if err != nil {
		return err
	}

	required := int(tx.Message.Header.NumRequireSignatures)
	for idx := 0; idx < required && idx < len(tx.Message.Accounts); idx++ {
		if tx.Message.Accounts[idx] != signer.account.PublicKey {
			continue
		}
		if len(tx.Signatures) != required {
			return ErrIncompleteSignatures
		}

		tx.Signatures[idx] = signer.account.Sign(message)

		return nil
	}

	return ErrNotRequiredSigner
}

// SendTransaction asks for approval, signs and submits transaction through provided client.
func (signer *Signer) SendTransaction(ctx context.Context, tx types.Transaction, client solana.LedgerClient) (string, error) {
	if !signer.approve(tx) {
		return "", solana.ErrUserRejected
	}

	// do not touch signatures of the caller copy.
	tx.Signatures = append([]types.Signature(nil), tx.Signatures...)
	if err := signer.Sign(&tx); err != nil {
		return "", err
	}

	raw, err := tx.Serialize()
	if err != nil {
		return "", err
	}

	summary, err := txwire.Inspect(raw)
	if err != nil {
		return "", err
	}
	if summary.Missing() != 0 {
		return "", ErrIncompleteSignatures
	}

	return client.SendTransaction(ctx, tx)
}
