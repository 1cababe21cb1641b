// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/sirupsen/logrus"

	"github.com/BoostyLabs/tokenlaunch/solana"
	"github.com/BoostyLabs/tokenlaunch/solana/txwire"
)

const (
	// DefaultConfirmTimeout defines how long ConfirmTransaction waits by default.
	DefaultConfirmTimeout = 90 * time.Second
	// DefaultPollInterval defines signature status polling interval by default.
	DefaultPollInterval = 2 * time.Second
)

// ErrMintNotFound defines that requested mint account does not exist or is not a mint.
var ErrMintNotFound = errors.New("mint account not found")

// programRejectionMarkers defines rpc error fragments which mean the ledger refused the transaction itself.
var programRejectionMarkers = []string{
	"simulation failed",
	"custom program error",
	"instructionerror",
	"insufficient funds",
	"already in use",
	"signature verification failure",
}

// API describes subset of JSON-RPC methods used by Client.
// Satisfied by *client.Client.
type API interface {
	GetBalance(ctx context.Context, base58Addr string) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error)
	GetMinimumBalanceForRentExemption(ctx context.Context, dataLen uint64) (uint64, error)
	SendTransaction(ctx context.Context, tx types.Transaction) (string, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
	GetAccountInfo(ctx context.Context, base58Addr string) (client.AccountInfo, error)
}

// Config defines configurable values of Client.
type Config struct {
	Commitment     rpc.Commitment
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
}

// MintInfo describes on-chain state of a mint.
type MintInfo struct {
	Address         common.PublicKey
	Decimals        uint8
	Supply          uint64
	IsInitialized   bool
	MintAuthority   *common.PublicKey
	FreezeAuthority *common.PublicKey
}

// Client implements solana.LedgerClient over JSON-RPC.
type Client struct {
	api    API
	config Config
	log    logrus.FieldLogger
}

// ensures that Client implements solana.LedgerClient.
var _ solana.LedgerClient = (*Client)(nil)

// New is a constructor for Client.
func New(api API, config Config, log logrus.FieldLogger) *Client {
	if config.Commitment == "" {
		config.Commitment = rpc.CommitmentConfirmed
	}
	if config.ConfirmTimeout <= 0 {
		config.ConfirmTimeout = DefaultConfirmTimeout
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}

	return &Client{
		api:    api,
		config: config,
		log:    log,
	}
}

// NewFromEndpoint returns Client talking to provided JSON-RPC endpoint.
func NewFromEndpoint(endpoint string, config Config, log logrus.FieldLogger) *Client {
	return New(client.NewClient(endpoint), config, log)
}

// GetBalance returns address balance in lamports.
func (c *Client) GetBalance(ctx context.Context, address common.PublicKey) (uint64, error) {
	balance, err := c.api.GetBalance(ctx, address.ToBase58())
	if err != nil {
		return 0, classify(err)
	}

	return balance, nil
}

// GetLatestBlockhash returns recent blockhash.
func (c *Client) GetLatestBlockhash(ctx context.Context) (string, error) {
	latest, err := c.api.GetLatestBlockhash(ctx)
	if err != nil {
		return "", classify(err)
	}

	return latest.Blockhash, nil
}

// GetMinimumBalanceForRentExemption returns rent exempt minimum in lamports for account of size bytes.
func (c *Client) GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error) {
	rent, err := c.api.GetMinimumBalanceForRentExemption(ctx, size)
	if err != nil {
		return 0, classify(err)
	}

	return rent, nil
}

// SendTransaction submits signed transaction, returns its signature.
func (c *Client) SendTransaction(ctx context.Context, tx types.Transaction) (string, error) {
	signature, err := c.api.SendTransaction(ctx, tx)
	if err != nil {
		return "", classify(err)
	}

	if _, err = txwire.ParseSignature(signature); err != nil {
		return "", fmt.Errorf("%w: %w", solana.ErrNetwork, err)
	}

	return signature, nil
}

// ConfirmTransaction polls signature status until configured commitment is reached,
// the transaction fails or ConfirmTimeout elapses.
// Transient polling errors are logged and polling continues.
func (c *Client) ConfirmTransaction(ctx context.Context, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConfirmTimeout)
	defer cancel()

	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	log := c.log.WithField("signature", signature)
	for {
		status, err := c.api.GetSignatureStatus(ctx, signature)
		switch {
		case err != nil:
			if ctx.Err() == nil {
				log.WithError(err).Debug("signature status poll failed")
			}
		case status != nil && status.Err != nil:
			return solana.NewProgramError(fmt.Sprint(status.Err))
		case status != nil && reached(status, c.config.Commitment):
			log.Debug("transaction confirmed")
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", solana.ErrConfirmationTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// GetMint reads mint account state.
func (c *Client) GetMint(ctx context.Context, mint common.PublicKey) (MintInfo, error) {
	account, err := c.api.GetAccountInfo(ctx, mint.ToBase58())
	if err != nil {
		return MintInfo{}, classify(err)
	}
	if len(account.Data) == 0 {
		return MintInfo{}, ErrMintNotFound
	}

	state, err := token.MintAccountFromData(account.Data)
	if err != nil {
		return MintInfo{}, errors.Join(ErrMintNotFound, err)
	}

	return MintInfo{
		Address:         mint,
		Decimals:        state.Decimals,
		Supply:          state.Supply,
		IsInitialized:   state.IsInitialized,
		MintAuthority:   state.MintAuthority,
		FreezeAuthority: state.FreezeAuthority,
	}, nil
}

// commitmentRank orders commitment levels.
func commitmentRank(commitment rpc.Commitment) int {
	switch commitment {
	case rpc.CommitmentProcessed:
		return 1
	case rpc.CommitmentConfirmed:
		return 2
	case rpc.CommitmentFinalized:
		return 3
	}

	return 0
}

// reached returns true if status is at least at target commitment.
// Status without confirmation status and confirmations is rooted, i.e. finalized.
func reached(status *rpc.SignatureStatus, target rpc.Commitment) bool {
	if status.ConfirmationStatus == nil {
		return status.Confirmations == nil
	}

	return commitmentRank(*status.ConfirmationStatus) >= commitmentRank(target)
}

// classify wraps rpc error into solana error class.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", solana.ErrConfirmationTimeout, err)
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range programRejectionMarkers {
		if strings.Contains(msg, marker) {
			return solana.NewProgramError(err.Error())
		}
	}

	return fmt.Errorf("%w: %w", solana.ErrNetwork, err)
}
