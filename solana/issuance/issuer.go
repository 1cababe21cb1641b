// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package issuance

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"math"
	"reflect"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/sirupsen/logrus"

	"github.com/BoostyLabs/tokenlaunch/internal/metrics"
	"github.com/BoostyLabs/tokenlaunch/solana"
	"github.com/BoostyLabs/tokenlaunch/solana/fee"
	"github.com/BoostyLabs/tokenlaunch/solana/txbuilder"
)

// TokenCreationResult describes successfully created token.
type TokenCreationResult struct {
	TokenAddress     string
	TransactionID    string
	MetadataAddress  string
	FeeTransactionID string
	HoldingAddress   string
	MintedAmount     uint64 // supply in the smallest token units.
	FeeCharged       fee.Lamports
}

// Plan describes issuance cost checked against the signer balance.
type Plan struct {
	Payer      common.PublicKey
	Fee        fee.Lamports
	Cost       txbuilder.Cost
	Required   uint64
	Available  uint64
	Sufficient bool
}

// Option configures Issuer.
type Option func(*Issuer)

// WithSchedule sets fee schedule.
func WithSchedule(schedule fee.Schedule) Option {
	return func(i *Issuer) { i.schedule = schedule }
}

// WithEntropy sets entropy source of mint keypairs.
func WithEntropy(entropy io.Reader) Option {
	return func(i *Issuer) { i.entropy = entropy }
}

// WithLogger sets logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(i *Issuer) { i.log = log }
}

// WithMetrics sets stage metrics.
func WithMetrics(m *metrics.Issuance) Option {
	return func(i *Issuer) { i.metrics = m }
}

// Issuer orchestrates token issuance: fee payment and batched token creation.
// Holds immutable configuration only and is safe for concurrent use,
// callers must serialize issuances per signer.
type Issuer struct {
	client   solana.LedgerClient
	builder  *txbuilder.TxBuilder
	schedule fee.Schedule
	entropy  io.Reader
	log      logrus.FieldLogger
	metrics  *metrics.Issuance
}

// NewIssuer is a constructor for Issuer.
func NewIssuer(client solana.LedgerClient, builder *txbuilder.TxBuilder, opts ...Option) *Issuer {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	issuer := &Issuer{
		client:   client,
		builder:  builder,
		schedule: fee.DefaultSchedule,
		entropy:  rand.Reader,
		log:      discard,
	}
	for _, opt := range opts {
		opt(issuer)
	}

	return issuer
}

// Quote returns service fee for provided flags.
func (i *Issuer) Quote(flags fee.Flags) fee.Lamports {
	return i.schedule.Quote(flags)
}

// Plan checks signer and request, returns issuance cost against live balance.
// Nothing is submitted.
func (i *Issuer) Plan(ctx context.Context, signer solana.Signer, req TokenCreationRequest) (*Plan, error) {
	plan, err := i.preflight(ctx, signer, req)
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// CreateToken pays service fee and creates token described by request.
// Returned error is always *Error. Fee payment is irreversible: every error
// after it carries FeeSignature.
func (i *Issuer) CreateToken(ctx context.Context, signer solana.Signer, req TokenCreationRequest) (*TokenCreationResult, error) {
	plan, issuanceErr := i.preflight(ctx, signer, req)
	if issuanceErr != nil {
		return nil, issuanceErr
	}
	if !plan.Sufficient {
		i.metrics.Stage(metrics.StagePreflight, metrics.OutcomeInsufficient)
		return nil, &Error{
			Kind:      InsufficientFunds,
			Required:  plan.Required,
			Available: plan.Available,
			Err:       txbuilder.NewInsufficientError(plan.Required, plan.Available),
		}
	}
	i.metrics.Stage(metrics.StagePreflight, metrics.OutcomeOK)

	log := i.log.WithField("payer", plan.Payer.ToBase58())

	feeSignature, issuanceErr := i.payFee(ctx, signer, plan.Fee, log)
	if issuanceErr != nil {
		return nil, issuanceErr
	}
	log = log.WithField("fee_signature", feeSignature)

	addresses, err := txbuilder.DeriveAddresses(i.entropy, plan.Payer)
	if err != nil {
		i.metrics.Stage(metrics.StageDerive, metrics.OutcomeFailed)
		log.WithError(err).Error("could not derive token addresses")
		return nil, &Error{Kind: AddressDerivationFailed, FeeSignature: feeSignature, Err: err}
	}
	i.metrics.Stage(metrics.StageDerive, metrics.OutcomeOK)

	mint := addresses.Mint.PublicKey.ToBase58()
	log = log.WithField("mint", mint)

	creation, signature, issuanceErr := i.createToken(ctx, signer, req, plan, addresses, log)
	if issuanceErr != nil {
		issuanceErr.FeeSignature = feeSignature
		return nil, issuanceErr
	}

	log.WithField("signature", signature).Info("token created")

	return &TokenCreationResult{
		TokenAddress:     mint,
		TransactionID:    signature,
		MetadataAddress:  addresses.Metadata.ToBase58(),
		FeeTransactionID: feeSignature,
		HoldingAddress:   addresses.Holding.ToBase58(),
		MintedAmount:     creation.MintedAmount,
		FeeCharged:       plan.Fee,
	}, nil
}

// preflight checks signer and request, computes cost and reads balance.
// No transaction is built.
func (i *Issuer) preflight(ctx context.Context, signer solana.Signer, req TokenCreationRequest) (*Plan, *Error) {
	if isNil(signer) || signer.PublicKey() == (common.PublicKey{}) {
		i.metrics.Stage(metrics.StagePreflight, metrics.OutcomeInvalid)
		return nil, &Error{Kind: SignerUnavailable}
	}

	if err := req.Validate(); err != nil {
		i.metrics.Stage(metrics.StagePreflight, metrics.OutcomeInvalid)
		return nil, &Error{Kind: InvalidRequest, Detail: invalidDetail(err), Err: err}
	}

	plan := &Plan{
		Payer: signer.PublicKey(),
		Fee:   i.schedule.Quote(req.Flags()),
	}

	var err error
	plan.Cost, err = i.cost(ctx, plan.Fee)
	if err != nil {
		return nil, i.preflightNetworkErr(err)
	}

	// cost overflowing u64 can not be covered by any balance.
	plan.Required, err = plan.Cost.Total()
	affordable := err == nil
	if !affordable {
		plan.Required = math.MaxUint64
	}

	plan.Available, err = i.client.GetBalance(ctx, plan.Payer)
	if err != nil {
		return nil, i.preflightNetworkErr(err)
	}

	plan.Sufficient = affordable && txbuilder.CheckBalance(plan.Available, plan.Cost) == nil

	return plan, nil
}

// cost computes lamports needed for issuance.
func (i *Issuer) cost(ctx context.Context, serviceFee fee.Lamports) (txbuilder.Cost, error) {
	mintRent, err := i.client.GetMinimumBalanceForRentExemption(ctx, i.builder.MintAccountSize())
	if err != nil {
		return txbuilder.Cost{}, err
	}

	holdingRent, err := i.client.GetMinimumBalanceForRentExemption(ctx, txbuilder.HoldingAccountSize)
	if err != nil {
		return txbuilder.Cost{}, err
	}

	metadataRent, err := i.client.GetMinimumBalanceForRentExemption(ctx, txbuilder.MetadataAccountSize)
	if err != nil {
		return txbuilder.Cost{}, err
	}

	return txbuilder.Cost{
		Fee:          uint64(serviceFee),
		MintRent:     mintRent,
		HoldingRent:  holdingRent,
		MetadataRent: metadataRent,
		NetworkFee:   txbuilder.NetworkFee(),
	}, nil
}

// preflightNetworkErr reports ledger read failure before anything was submitted.
func (i *Issuer) preflightNetworkErr(err error) *Error {
	i.metrics.Stage(metrics.StagePreflight, metrics.OutcomeNetworkTimeout)
	i.log.WithError(err).Warn("could not read ledger state")

	return &Error{Kind: FeePaymentFailed, Cause: NetworkTimeout, Err: err}
}

// payFee submits service fee transaction and waits for its confirmation.
func (i *Issuer) payFee(ctx context.Context, signer solana.Signer, amount fee.Lamports, log logrus.FieldLogger) (string, *Error) {
	log = log.WithField("lamports", uint64(amount))

	blockhash, err := i.client.GetLatestBlockhash(ctx)
	if err != nil {
		return "", i.stageErr(metrics.StageFee, newError(FeePaymentFailed, err), log)
	}

	tx, err := i.builder.BuildFeePayment(txbuilder.FeePaymentParams{
		Payer:           signer.PublicKey(),
		Amount:          uint64(amount),
		RecentBlockhash: blockhash,
	})
	if err != nil {
		return "", i.stageErr(metrics.StageFee, newError(FeePaymentFailed, solana.NewProgramError(err.Error())), log)
	}

	signature, err := signer.SendTransaction(ctx, tx, i.client)
	if err != nil {
		return "", i.stageErr(metrics.StageFee, newError(FeePaymentFailed, err), log)
	}
	log = log.WithField("fee_signature", signature)

	if err = i.client.ConfirmTransaction(ctx, signature); err != nil {
		issuanceErr := newError(FeePaymentFailed, err)
		issuanceErr.FeeSignature = signature
		return "", i.stageErr(metrics.StageFee, issuanceErr, log)
	}

	i.metrics.Stage(metrics.StageFee, metrics.OutcomeOK)
	i.metrics.FeeCharged(uint64(amount))
	log.Info("service fee paid")

	return signature, nil
}

// createToken builds, submits and confirms token creation transaction.
func (i *Issuer) createToken(ctx context.Context, signer solana.Signer, req TokenCreationRequest, plan *Plan, addresses txbuilder.Addresses, log logrus.FieldLogger) (*txbuilder.CreationTx, string, *Error) {
	blockhash, err := i.client.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, "", i.stageErr(metrics.StageCreate, newError(TokenCreationFailed, err), log)
	}

	creation, err := i.builder.BuildTokenCreation(txbuilder.TokenCreationParams{
		Payer:           plan.Payer,
		Addresses:       addresses,
		Decimals:        req.Decimals,
		Supply:          req.Supply,
		Name:            req.Name,
		Symbol:          req.Symbol,
		URI:             req.URI,
		RevokeFreeze:    req.RevokeFreeze,
		RevokeMint:      req.RevokeMint,
		MintRent:        plan.Cost.MintRent,
		RecentBlockhash: blockhash,
	})
	if err != nil {
		return nil, "", i.stageErr(metrics.StageCreate, newError(TokenCreationFailed, solana.NewProgramError(err.Error())), log)
	}
	log.WithFields(logrus.Fields{
		"instructions": len(creation.Layout),
		"size":         creation.Size,
	}).Debug("token creation transaction built")

	signature, err := signer.SendTransaction(ctx, creation.Tx, i.client)
	if err != nil {
		return nil, "", i.stageErr(metrics.StageCreate, newError(TokenCreationFailed, err), log)
	}

	if err = i.client.ConfirmTransaction(ctx, signature); err != nil {
		return nil, "", i.stageErr(metrics.StageCreate, newError(TokenCreationFailed, err), log.WithField("signature", signature))
	}
	i.metrics.Stage(metrics.StageCreate, metrics.OutcomeOK)

	return creation, signature, nil
}

// stageErr records and logs stage failure.
func (i *Issuer) stageErr(stage string, issuanceErr *Error, log logrus.FieldLogger) *Error {
	i.metrics.Stage(stage, outcome(issuanceErr.Cause))
	log.WithError(issuanceErr.Err).WithFields(logrus.Fields{
		"stage": stage,
		"cause": issuanceErr.Cause.String(),
	}).Error("token issuance stage failed")

	return issuanceErr
}

// outcome maps cause to metrics outcome label.
func outcome(cause Cause) string {
	switch cause {
	case UserRejected:
		return metrics.OutcomeUserRejected
	case ProgramRejected:
		return metrics.OutcomeProgramRejected
	default:
		return metrics.OutcomeNetworkTimeout
	}
}

// isNil returns true for nil interface and for interface holding nil pointer.
func isNil(signer solana.Signer) bool {
	if signer == nil {
		return true
	}

	value := reflect.ValueOf(signer)
	return value.Kind() == reflect.Pointer && value.IsNil()
}

// invalidDetail strips validation error class prefix.
func invalidDetail(err error) string {
	detail := err.Error()
	prefix := ErrInvalidRequest.Error() + ": "
	if errors.Is(err, ErrInvalidRequest) && len(detail) > len(prefix) {
		return detail[len(prefix):]
	}

	return detail
}
