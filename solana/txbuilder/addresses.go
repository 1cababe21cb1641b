// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"crypto/ed25519"
	"errors"
	"io"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
)

// ErrAddressDerivation defines errors class for address derivation.
var ErrAddressDerivation = errors.New("derive addresses")

// Addresses describes accounts created by token creation transaction.
type Addresses struct {
	Mint     types.Account    // fresh mint keypair, its public key is the token address.
	Holding  common.PublicKey // associated token account of (owner, mint).
	Metadata common.PublicKey // metadata program derived address of mint.
}

// DeriveAddresses generates mint keypair from entropy and derives holding and metadata addresses from it.
// No network calls are made.
func DeriveAddresses(entropy io.Reader, owner common.PublicKey) (_ Addresses, err error) {
	defer func(err *error) {
		if *err != nil {
			*err = errors.Join(ErrAddressDerivation, *err)
		}
	}(&err)

	_, privateKey, err := ed25519.GenerateKey(entropy)
	if err != nil {
		return Addresses{}, err
	}

	mint, err := types.AccountFromBytes(privateKey)
	if err != nil {
		return Addresses{}, err
	}

	return DeriveForMint(mint, owner)
}

// DeriveForMint derives holding and metadata addresses for already known mint keypair.
func DeriveForMint(mint types.Account, owner common.PublicKey) (_ Addresses, err error) {
	holding, _, err := common.FindAssociatedTokenAddress(owner, mint.PublicKey)
	if err != nil {
		return Addresses{}, err
	}

	metadata, err := token_metadata.GetTokenMetaPubkey(mint.PublicKey)
	if err != nil {
		return Addresses{}, err
	}

	return Addresses{
		Mint:     mint,
		Holding:  holding,
		Metadata: metadata,
	}, nil
}
