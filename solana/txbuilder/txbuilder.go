// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"errors"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"

	"github.com/BoostyLabs/tokenlaunch/internal/numbers"
	"github.com/BoostyLabs/tokenlaunch/solana"
	"github.com/BoostyLabs/tokenlaunch/solana/txwire"
)

const (
	// DefaultMintAccountSize defines mint account layout size of the token program.
	DefaultMintAccountSize = uint64(token.MintAccountSize)
	// HoldingAccountSize defines token account layout size of the token program.
	HoldingAccountSize = uint64(token.TokenAccountSize)
	// MetadataAccountSize defines maximum metadata account size of the metadata program.
	MetadataAccountSize uint64 = 679

	// paymentSigners defines amount of signatures of fee payment transaction.
	paymentSigners = 1
	// creationSigners defines amount of signatures of token creation transaction (payer and mint).
	creationSigners = 2
)

var (
	// ErrSupplyOverflow defines that scaled supply does not fit into token amount type.
	ErrSupplyOverflow = errors.New("supply overflows token amount")
	// ErrPartialSign defines that partially signed transaction has unexpected signature slots.
	ErrPartialSign = errors.New("unexpected partial signature state")
)

// FeePaymentParams describes data needed to build service fee payment transaction.
type FeePaymentParams struct {
	Payer           common.PublicKey
	Amount          uint64 // lamports.
	RecentBlockhash string
}

// TokenCreationParams describes data needed to build token creation transaction.
type TokenCreationParams struct {
	Payer           common.PublicKey // fee payer, mint authority and owner of holding account.
	Addresses       Addresses
	Decimals        uint8
	Supply          uint64 // whole tokens, scaled by 10^Decimals on mint.
	Name            string
	Symbol          string
	URI             string
	RevokeFreeze    bool   // freeze authority is never granted.
	RevokeMint      bool   // mint authority is removed after supply is minted.
	MintRent        uint64 // rent exempt minimum for mint account in lamports.
	RecentBlockhash string
}

// CreationTx describes built token creation transaction.
type CreationTx struct {
	Tx              types.Transaction // partially signed by the mint keypair.
	Layout          []InstructionKind // kinds of Instructions, index by index.
	Instructions    []types.Instruction
	FreezeAuthority *common.PublicKey // nil if freeze authority is not granted.
	MintedAmount    uint64            // supply in the smallest token units.
	Size            int               // serialized size in bytes.
}

// Cost describes lamports needed to pay for token issuance.
type Cost struct {
	Fee          uint64 // service fee.
	MintRent     uint64
	HoldingRent  uint64
	MetadataRent uint64
	NetworkFee   uint64 // signature fees of both transactions.
}

// Total returns sum of all cost parts.
func (c Cost) Total() (uint64, error) {
	return numbers.SumUint64(c.Fee, c.MintRent, c.HoldingRent, c.MetadataRent, c.NetworkFee)
}

// NetworkFee returns signature fees of fee payment and token creation transactions.
func NetworkFee() uint64 {
	return (paymentSigners + creationSigners) * solana.SignatureFee
}

// CheckBalance returns InsufficientError if balance does not cover cost.
func CheckBalance(balance uint64, cost Cost) error {
	total, err := cost.Total()
	if err != nil {
		return err
	}

	if balance < total {
		return NewInsufficientError(total, balance)
	}

	return nil
}

// TxBuilder provides transaction building related logic.
type TxBuilder struct {
	feeRecipient    common.PublicKey
	mintAccountSize uint64
}

// NewTxBuilder is a constructor for TxBuilder.
func NewTxBuilder(feeRecipient common.PublicKey, mintAccountSize uint64) *TxBuilder {
	if mintAccountSize == 0 {
		mintAccountSize = DefaultMintAccountSize
	}

	return &TxBuilder{
		feeRecipient:    feeRecipient,
		mintAccountSize: mintAccountSize,
	}
}

// MintAccountSize returns mint account size used for allocation and rent calculation.
func (b *TxBuilder) MintAccountSize() uint64 {
	return b.mintAccountSize
}

// FeeRecipient returns service fee recipient address.
func (b *TxBuilder) FeeRecipient() common.PublicKey {
	return b.feeRecipient
}

// BuildFeePayment constructs unsigned transaction transferring service fee from payer to fee recipient.
func (b *TxBuilder) BuildFeePayment(params FeePaymentParams) (types.Transaction, error) {
	return types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        params.Payer,
			RecentBlockhash: params.RecentBlockhash,
			Instructions: []types.Instruction{
				system.Transfer(system.TransferParam{
					From:   params.Payer,
					To:     b.feeRecipient,
					Amount: params.Amount,
				}),
			},
		}),
	})
}

// BuildTokenCreation constructs token creation transaction partially signed by the mint keypair.
// The payer signature slot is left empty for the wallet.
//
//	Tx struct
//	instructions:
//	┌─────────┬──────────────────────────┬────────────────────────────────────────┐
//	│  index  │          type            │             description                │
//	├=========┼==========================┼========================================┤
//	│       0 │ create-mint-account      │ allocate mint account, rent exempt,    │
//	│         │                          │ owned by the token program.            │
//	├─────────┼──────────────────────────┼────────────────────────────────────────┤
//	│       1 │ initialize-mint          │ mint authority - payer, freeze         │
//	│         │                          │ authority - payer or none.             │
//	├─────────┼──────────────────────────┼────────────────────────────────────────┤
//	│       2 │ create-holding-account   │ associated token account of payer.     │
//	├─────────┼──────────────────────────┼────────────────────────────────────────┤
//	│       3 │ mint-to                  │ whole supply to the holding account.   │
//	├─────────┼──────────────────────────┼────────────────────────────────────────┤
//	│       4 │ create-metadata          │ name, symbol and uri of the token.     │
//	├─────────┼──────────────────────────┼────────────────────────────────────────┤
//	│       5 │ revoke-mint-authority    │ optional, sets mint authority to none. │
//	└─────────┴──────────────────────────┴────────────────────────────────────────┘
func (b *TxBuilder) BuildTokenCreation(params TokenCreationParams) (*CreationTx, error) {
	mintedAmount, err := numbers.ScaleUint64(params.Supply, params.Decimals)
	if err != nil {
		return nil, ErrSupplyOverflow
	}

	var (
		mint   = params.Addresses.Mint.PublicKey
		result = &CreationTx{MintedAmount: mintedAmount}
	)
	if !params.RevokeFreeze {
		freezeAuthority := params.Payer
		result.FreezeAuthority = &freezeAuthority
	}

	result.add(CreateMintAccountKind, system.CreateAccount(system.CreateAccountParam{
		From:     params.Payer,
		New:      mint,
		Owner:    common.TokenProgramID,
		Lamports: params.MintRent,
		Space:    b.mintAccountSize,
	}))

	result.add(InitializeMintKind, token.InitializeMint(token.InitializeMintParam{
		Decimals:   params.Decimals,
		Mint:       mint,
		MintAuth:   params.Payer,
		FreezeAuth: result.FreezeAuthority,
	}))

	result.add(CreateHoldingAccountKind, associated_token_account.CreateAssociatedTokenAccount(
		associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 params.Payer,
			Owner:                  params.Payer,
			Mint:                   mint,
			AssociatedTokenAccount: params.Addresses.Holding,
		},
	))

	result.add(MintSupplyKind, token.MintTo(token.MintToParam{
		Mint:   mint,
		To:     params.Addresses.Holding,
		Auth:   params.Payer,
		Amount: mintedAmount,
	}))

	// metadata program requires mint authority signature, so it goes before revocation.
	result.add(CreateMetadataKind, token_metadata.CreateMetadataAccountV3(
		token_metadata.CreateMetadataAccountV3Param{
			Metadata:                params.Addresses.Metadata,
			Mint:                    mint,
			MintAuthority:           params.Payer,
			UpdateAuthority:         params.Payer,
			Payer:                   params.Payer,
			UpdateAuthorityIsSigner: true,
			IsMutable:               true,
			Data: token_metadata.DataV2{
				Name:   params.Name,
				Symbol: params.Symbol,
				Uri:    params.URI,
			},
		},
	))

	if params.RevokeMint {
		result.add(RevokeMintAuthorityKind, token.SetAuthority(token.SetAuthorityParam{
			Account:  mint,
			NewAuth:  nil,
			AuthType: token.AuthorityTypeMintTokens,
			Auth:     params.Payer,
		}))
	}

	result.Tx, err = types.NewTransaction(types.NewTransactionParam{
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        params.Payer,
			RecentBlockhash: params.RecentBlockhash,
			Instructions:    result.Instructions,
		}),
		Signers: []types.Account{params.Addresses.Mint},
	})
	if err != nil {
		return nil, err
	}

	result.Size, err = verifyPartialSign(result.Tx)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// add appends instruction with its kind.
func (tx *CreationTx) add(kind InstructionKind, instruction types.Instruction) {
	tx.Layout = append(tx.Layout, kind)
	tx.Instructions = append(tx.Instructions, instruction)
}

// Count returns amount of instructions of provided kind.
func (tx *CreationTx) Count(kind InstructionKind) int {
	var count int
	for _, k := range tx.Layout {
		if k == kind {
			count++
		}
	}

	return count
}

// verifyPartialSign checks that serialized transaction fits packet size,
// has creationSigners slots, payer slot (#0) is empty and mint slot is signed.
// Returns serialized size.
func verifyPartialSign(tx types.Transaction) (int, error) {
	raw, err := tx.Serialize()
	if err != nil {
		return 0, err
	}

	summary, err := txwire.Inspect(raw)
	if err != nil {
		return 0, err
	}

	if len(summary.Signatures) != creationSigners || summary.Signed(0) || summary.Missing() != 1 {
		return 0, ErrPartialSign
	}

	return summary.Size, nil
}
