// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package issuance_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"
	"math"
	"testing"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/tokenlaunch/internal/metrics"
	"github.com/BoostyLabs/tokenlaunch/solana"
	"github.com/BoostyLabs/tokenlaunch/solana/fee"
	"github.com/BoostyLabs/tokenlaunch/solana/issuance"
	"github.com/BoostyLabs/tokenlaunch/solana/signer"
	"github.com/BoostyLabs/tokenlaunch/solana/txbuilder"
)

const blockhash = "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N"

var feeRecipient = common.PublicKeyFromString("9B5XszUGdMaxCZ7uSQhPzdks5ZQSmWxrmzCSvtJ6Ns6g")

type fakeLedger struct {
	balance      uint64
	balanceErr   error
	rentErr      error
	blockhashErr error
	sent         []types.Transaction
	confirmed    []string
	confirmErr   map[string]error
}

func (l *fakeLedger) GetBalance(context.Context, common.PublicKey) (uint64, error) {
	return l.balance, l.balanceErr
}

func (l *fakeLedger) GetLatestBlockhash(context.Context) (string, error) {
	if l.blockhashErr != nil {
		return "", l.blockhashErr
	}

	return blockhash, nil
}

// GetMinimumBalanceForRentExemption follows ledger rent formula: two years of 3480 lamports per byte-year
// with 128 bytes of account overhead.
func (l *fakeLedger) GetMinimumBalanceForRentExemption(_ context.Context, size uint64) (uint64, error) {
	if l.rentErr != nil {
		return 0, l.rentErr
	}

	return (size + 128) * 6960, nil
}

func (l *fakeLedger) SendTransaction(_ context.Context, tx types.Transaction) (string, error) {
	l.sent = append(l.sent, tx)
	return fmt.Sprintf("sig-%d", len(l.sent)), nil
}

func (l *fakeLedger) ConfirmTransaction(_ context.Context, signature string) error {
	l.confirmed = append(l.confirmed, signature)
	return l.confirmErr[signature]
}

type fakeSigner struct {
	account  types.Account
	rejectAt int
	txs      []types.Transaction
}

func (s *fakeSigner) PublicKey() common.PublicKey {
	return s.account.PublicKey
}

func (s *fakeSigner) SendTransaction(ctx context.Context, tx types.Transaction, client solana.LedgerClient) (string, error) {
	s.txs = append(s.txs, tx)
	if len(s.txs) == s.rejectAt {
		return "", fmt.Errorf("wallet: %w", solana.ErrUserRejected)
	}

	return client.SendTransaction(ctx, tx)
}

type countingReader struct {
	reader *bytes.Reader
	reads  int
}

func (r *countingReader) Read(p []byte) (int, error) {
	r.reads++
	return r.reader.Read(p)
}

type env struct {
	ledger   *fakeLedger
	signer   *fakeSigner
	entropy  *countingReader
	registry *prometheus.Registry
	issuer   *issuance.Issuer
	mint     common.PublicKey
}

func newEnv(t *testing.T, balance uint64) *env {
	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	mint := common.PublicKeyFromBytes(ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey))

	registry := prometheus.NewRegistry()
	m, err := metrics.NewIssuance(registry)
	require.NoError(t, err)

	e := &env{
		ledger:   &fakeLedger{balance: balance, confirmErr: map[string]error{}},
		signer:   &fakeSigner{account: types.NewAccount()},
		entropy:  &countingReader{reader: bytes.NewReader(seed)},
		registry: registry,
		mint:     mint,
	}
	e.issuer = issuance.NewIssuer(e.ledger, txbuilder.NewTxBuilder(feeRecipient, 0),
		issuance.WithEntropy(e.entropy),
		issuance.WithMetrics(m),
	)

	return e
}

func lunaCoin() issuance.TokenCreationRequest {
	return issuance.TokenCreationRequest{
		Name:         "Luna Coin",
		Symbol:       "LUNA",
		Decimals:     9,
		Supply:       1_000_000_000,
		RevokeFreeze: false,
		RevokeMint:   true,
	}
}

func programs(tx types.Transaction) []common.PublicKey {
	ids := make([]common.PublicKey, 0, len(tx.Message.Instructions))
	for _, instruction := range tx.Message.Instructions {
		ids = append(ids, tx.Message.Accounts[instruction.ProgramIDIndex])
	}

	return ids
}

func requireIssuanceError(t *testing.T, err error, kind issuance.Kind, cause issuance.Cause) *issuance.Error {
	t.Helper()

	var issuanceErr *issuance.Error
	require.ErrorAs(t, err, &issuanceErr)
	require.Equal(t, kind, issuanceErr.Kind)
	require.Equal(t, cause, issuanceErr.Cause)

	return issuanceErr
}

func stageCount(t *testing.T, registry *prometheus.Registry, stage, outcome string) float64 {
	values, err := metrics.Snapshot(registry)
	require.NoError(t, err)

	return values[fmt.Sprintf("tokenlaunch_issuance_stage_total{outcome=%s,stage=%s}", outcome, stage)]
}

func TestIssuer_CreateToken(t *testing.T) {
	ctx := context.Background()

	t.Run("luna coin", func(t *testing.T) {
		e := newEnv(t, solana.LamportsPerSOL)

		result, err := e.issuer.CreateToken(ctx, e.signer, lunaCoin())
		require.NoError(t, err)

		metadata, err := token_metadata.GetTokenMetaPubkey(e.mint)
		require.NoError(t, err)
		holding, _, err := common.FindAssociatedTokenAddress(e.signer.PublicKey(), e.mint)
		require.NoError(t, err)

		require.Equal(t, e.mint.ToBase58(), result.TokenAddress)
		require.Equal(t, metadata.ToBase58(), result.MetadataAddress)
		require.Equal(t, holding.ToBase58(), result.HoldingAddress)
		require.Equal(t, "sig-1", result.FeeTransactionID)
		require.Equal(t, "sig-2", result.TransactionID)
		require.EqualValues(t, 1_000_000_000_000_000_000, result.MintedAmount)
		require.Equal(t, fee.Lamports(80_000_000), result.FeeCharged)

		require.Len(t, e.signer.txs, 2)
		require.Equal(t, []string{"sig-1", "sig-2"}, e.ledger.confirmed)

		feeTx := e.signer.txs[0]
		require.Equal(t, []common.PublicKey{common.SystemProgramID}, programs(feeTx))
		require.Contains(t, feeTx.Message.Accounts, feeRecipient)

		creationTx := e.signer.txs[1]
		require.Equal(t, []common.PublicKey{
			common.SystemProgramID,
			common.TokenProgramID,
			common.SPLAssociatedTokenAccountProgramID,
			common.TokenProgramID,
			common.MetaplexTokenMetaProgramID,
			common.TokenProgramID,
		}, programs(creationTx))
		require.EqualValues(t, 2, creationTx.Message.Header.NumRequireSignatures)
		require.Equal(t, e.signer.PublicKey(), creationTx.Message.Accounts[0])
		require.Equal(t, e.mint, creationTx.Message.Accounts[1])

		require.Equal(t, 1.0, stageCount(t, e.registry, metrics.StageFee, metrics.OutcomeOK))
		require.Equal(t, 1.0, stageCount(t, e.registry, metrics.StageCreate, metrics.OutcomeOK))
	})

	t.Run("revoke freeze only", func(t *testing.T) {
		e := newEnv(t, solana.LamportsPerSOL)
		req := lunaCoin()
		req.RevokeFreeze, req.RevokeMint = true, false

		result, err := e.issuer.CreateToken(ctx, e.signer, req)
		require.NoError(t, err)
		require.Equal(t, fee.Lamports(80_000_000), result.FeeCharged)
		require.Len(t, programs(e.signer.txs[1]), 5)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		e := newEnv(t, 1000)

		_, err := e.issuer.CreateToken(ctx, e.signer, lunaCoin())
		issuanceErr := requireIssuanceError(t, err, issuance.InsufficientFunds, issuance.NoCause)
		require.EqualValues(t, 89_132_600, issuanceErr.Required)
		require.EqualValues(t, 1000, issuanceErr.Available)
		require.EqualValues(t, 89_131_600, issuanceErr.Shortfall())
		require.ErrorIs(t, err, &txbuilder.InsufficientError{})

		require.Empty(t, e.signer.txs)
		require.Empty(t, e.ledger.sent)
		require.Zero(t, e.entropy.reads)
		require.Equal(t, 1.0, stageCount(t, e.registry, metrics.StagePreflight, metrics.OutcomeInsufficient))
	})

	t.Run("fee payment rejected", func(t *testing.T) {
		e := newEnv(t, solana.LamportsPerSOL)
		e.signer.rejectAt = 1

		_, err := e.issuer.CreateToken(ctx, e.signer, lunaCoin())
		issuanceErr := requireIssuanceError(t, err, issuance.FeePaymentFailed, issuance.UserRejected)
		require.Empty(t, issuanceErr.FeeSignature)
		require.False(t, issuanceErr.FeeCharged())
		require.ErrorIs(t, err, solana.ErrUserRejected)

		require.Empty(t, e.ledger.sent)
		require.Zero(t, e.entropy.reads)
		require.Equal(t, 1.0, stageCount(t, e.registry, metrics.StageFee, metrics.OutcomeUserRejected))
	})

	t.Run("fee confirmation lost", func(t *testing.T) {
		e := newEnv(t, solana.LamportsPerSOL)
		e.ledger.confirmErr["sig-1"] = fmt.Errorf("poll: %w", solana.ErrConfirmationTimeout)

		_, err := e.issuer.CreateToken(ctx, e.signer, lunaCoin())
		issuanceErr := requireIssuanceError(t, err, issuance.FeePaymentFailed, issuance.NetworkTimeout)
		require.Equal(t, "sig-1", issuanceErr.FeeSignature)
		require.True(t, issuanceErr.FeeMayHaveLanded())
		require.Contains(t, issuanceErr.UserMessage(), "sig-1")

		require.Len(t, e.ledger.sent, 1)
		require.Zero(t, e.entropy.reads)
	})

	t.Run("token creation rejected", func(t *testing.T) {
		e := newEnv(t, solana.LamportsPerSOL)
		e.signer.rejectAt = 2

		_, err := e.issuer.CreateToken(ctx, e.signer, lunaCoin())
		issuanceErr := requireIssuanceError(t, err, issuance.TokenCreationFailed, issuance.UserRejected)
		require.Equal(t, "sig-1", issuanceErr.FeeSignature)
		require.True(t, issuanceErr.FeeCharged())
		require.Contains(t, issuanceErr.UserMessage(), "already paid")

		require.Len(t, e.ledger.sent, 1)
		require.Equal(t, []string{"sig-1"}, e.ledger.confirmed)
	})

	t.Run("token creation program error", func(t *testing.T) {
		e := newEnv(t, solana.LamportsPerSOL)
		e.ledger.confirmErr["sig-2"] = solana.NewProgramError("custom program error: 0x0")

		_, err := e.issuer.CreateToken(ctx, e.signer, lunaCoin())
		issuanceErr := requireIssuanceError(t, err, issuance.TokenCreationFailed, issuance.ProgramRejected)
		require.Equal(t, "custom program error: 0x0", issuanceErr.Detail)
		require.Equal(t, "sig-1", issuanceErr.FeeSignature)
		require.Equal(t, 1.0, stageCount(t, e.registry, metrics.StageCreate, metrics.OutcomeProgramRejected))
	})

	t.Run("token creation unknown error", func(t *testing.T) {
		e := newEnv(t, solana.LamportsPerSOL)
		e.ledger.confirmErr["sig-2"] = fmt.Errorf("socket closed")

		_, err := e.issuer.CreateToken(ctx, e.signer, lunaCoin())
		requireIssuanceError(t, err, issuance.TokenCreationFailed, issuance.NetworkTimeout)
	})

	t.Run("entropy exhausted", func(t *testing.T) {
		e := newEnv(t, solana.LamportsPerSOL)
		e.entropy.reader = bytes.NewReader(nil)

		_, err := e.issuer.CreateToken(ctx, e.signer, lunaCoin())
		issuanceErr := requireIssuanceError(t, err, issuance.AddressDerivationFailed, issuance.NoCause)
		require.Equal(t, "sig-1", issuanceErr.FeeSignature)
		require.ErrorIs(t, err, txbuilder.ErrAddressDerivation)
		require.Len(t, e.ledger.sent, 1)
	})

	t.Run("signer unavailable", func(t *testing.T) {
		e := newEnv(t, solana.LamportsPerSOL)

		_, err := e.issuer.CreateToken(ctx, nil, lunaCoin())
		requireIssuanceError(t, err, issuance.SignerUnavailable, issuance.NoCause)

		_, err = e.issuer.CreateToken(ctx, &fakeSigner{}, lunaCoin())
		requireIssuanceError(t, err, issuance.SignerUnavailable, issuance.NoCause)

		var wallet *signer.Signer
		require.NotPanics(t, func() {
			_, err = e.issuer.CreateToken(ctx, wallet, lunaCoin())
		})
		requireIssuanceError(t, err, issuance.SignerUnavailable, issuance.NoCause)

		var fake *fakeSigner
		require.NotPanics(t, func() {
			_, err = e.issuer.Plan(ctx, fake, lunaCoin())
		})
		requireIssuanceError(t, err, issuance.SignerUnavailable, issuance.NoCause)
		require.Empty(t, e.ledger.sent)
	})

	t.Run("ledger read failures before fee payment", func(t *testing.T) {
		tests := []struct {
			name   string
			inject func(l *fakeLedger)
		}{
			{"balance", func(l *fakeLedger) { l.balanceErr = fmt.Errorf("rpc: %w", solana.ErrNetwork) }},
			{"rent", func(l *fakeLedger) { l.rentErr = fmt.Errorf("connection refused") }},
			{"blockhash", func(l *fakeLedger) { l.blockhashErr = fmt.Errorf("rpc: %w", solana.ErrConfirmationTimeout) }},
		}

		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				e := newEnv(t, solana.LamportsPerSOL)
				test.inject(e.ledger)

				_, err := e.issuer.CreateToken(ctx, e.signer, lunaCoin())
				issuanceErr := requireIssuanceError(t, err, issuance.FeePaymentFailed, issuance.NetworkTimeout)
				require.Empty(t, issuanceErr.FeeSignature)
				require.False(t, issuanceErr.FeeMayHaveLanded())
				require.False(t, issuanceErr.FeeCharged())
				require.Equal(t, "Network issue, please retry. Nothing was charged.", issuanceErr.UserMessage())

				require.Empty(t, e.signer.txs)
				require.Empty(t, e.ledger.sent)
				require.Zero(t, e.entropy.reads)
			})
		}
	})

	t.Run("overflowing fee schedule", func(t *testing.T) {
		e := newEnv(t, solana.LamportsPerSOL)
		issuer := issuance.NewIssuer(e.ledger, txbuilder.NewTxBuilder(feeRecipient, 0),
			issuance.WithSchedule(fee.Schedule{Base: math.MaxUint64 - 1, RevokeMint: 10}),
			issuance.WithEntropy(e.entropy),
		)

		_, err := issuer.CreateToken(ctx, e.signer, lunaCoin())
		issuanceErr := requireIssuanceError(t, err, issuance.InsufficientFunds, issuance.NoCause)
		require.EqualValues(t, uint64(math.MaxUint64), issuanceErr.Required)
		require.EqualValues(t, solana.LamportsPerSOL, issuanceErr.Available)

		require.Empty(t, e.signer.txs)
		require.Empty(t, e.ledger.sent)
	})

	t.Run("invalid request", func(t *testing.T) {
		e := newEnv(t, solana.LamportsPerSOL)
		req := lunaCoin()
		req.Name = "Luna Coin Luna Coin Luna Coin Luna"

		_, err := e.issuer.CreateToken(ctx, e.signer, req)
		issuanceErr := requireIssuanceError(t, err, issuance.InvalidRequest, issuance.NoCause)
		require.Equal(t, "name must be at most 32 bytes", issuanceErr.Detail)
		require.ErrorIs(t, err, issuance.ErrInvalidRequest)
		require.Empty(t, e.signer.txs)
	})
}

func TestIssuer_Plan(t *testing.T) {
	e := newEnv(t, 1000)

	plan, err := e.issuer.Plan(context.Background(), e.signer, lunaCoin())
	require.NoError(t, err)
	require.False(t, plan.Sufficient)
	require.Equal(t, fee.Lamports(80_000_000), plan.Fee)
	require.EqualValues(t, 1_461_600, plan.Cost.MintRent)
	require.EqualValues(t, 2_039_280, plan.Cost.HoldingRent)
	require.EqualValues(t, 5_616_720, plan.Cost.MetadataRent)
	require.EqualValues(t, 15_000, plan.Cost.NetworkFee)
	require.EqualValues(t, 89_132_600, plan.Required)
	require.Equal(t, e.signer.PublicKey(), plan.Payer)

	require.Empty(t, e.signer.txs)
	require.Empty(t, e.ledger.sent)
	require.Zero(t, e.entropy.reads)
}

func TestIssuer_Quote(t *testing.T) {
	issuer := issuance.NewIssuer(&fakeLedger{}, txbuilder.NewTxBuilder(feeRecipient, 0),
		issuance.WithSchedule(fee.Schedule{Base: 1, RevokeFreeze: 2, RevokeMint: 4}),
	)

	require.Equal(t, fee.Lamports(7), issuer.Quote(fee.Flags{RevokeFreeze: true, RevokeMint: true}))
	require.Equal(t, fee.Lamports(1), issuer.Quote(fee.Flags{}))
}
