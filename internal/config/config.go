// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/BoostyLabs/tokenlaunch/solana/fee"
	"github.com/BoostyLabs/tokenlaunch/solana/txbuilder"
)

const (
	// EnvPrefix defines prefix of environment variables overriding config keys.
	EnvPrefix = "TOKENLAUNCH"
	// FileName defines config file name looked up in working directory.
	FileName = "tokenlaunch"
)

var (
	// ErrInvalidConfig defines that loaded config has invalid values.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrMissingFeeRecipient defines that fee recipient address is not configured.
	ErrMissingFeeRecipient = errors.New("fee recipient is not configured")
)

// Config defines token launch service configuration.
type Config struct {
	RPCEndpoint     string        `mapstructure:"rpc_endpoint"`
	FeeRecipient    string        `mapstructure:"fee_recipient"`
	Commitment      string        `mapstructure:"commitment"`
	ConfirmTimeout  time.Duration `mapstructure:"confirm_timeout"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MintAccountSize uint64        `mapstructure:"mint_account_size"`
	KeypairPath     string        `mapstructure:"keypair_path"`
	LogLevel        string        `mapstructure:"log_level"`

	FeeBaseSOL         string `mapstructure:"fee_base_sol"`
	FeeRevokeFreezeSOL string `mapstructure:"fee_revoke_freeze_sol"`
	FeeRevokeMintSOL   string `mapstructure:"fee_revoke_mint_sol"`
}

// defaults sets default value of every key, keys without default are not read from environment.
func defaults(v *viper.Viper) {
	v.SetDefault("rpc_endpoint", rpc.DevnetRPCEndpoint)
	v.SetDefault("fee_recipient", "")
	v.SetDefault("commitment", string(rpc.CommitmentConfirmed))
	v.SetDefault("confirm_timeout", 90*time.Second)
	v.SetDefault("poll_interval", 2*time.Second)
	v.SetDefault("mint_account_size", txbuilder.DefaultMintAccountSize)
	v.SetDefault("keypair_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("fee_base_sol", fee.DefaultSchedule.Base.SOL().String())
	v.SetDefault("fee_revoke_freeze_sol", fee.DefaultSchedule.RevokeFreeze.SOL().String())
	v.SetDefault("fee_revoke_mint_sol", fee.DefaultSchedule.RevokeMint.SOL().String())
}

// Load reads config from file at path, or from tokenlaunch.yaml in working directory if path is empty,
// environment variables with TOKENLAUNCH_ prefix override file values.
// Missing default file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate checks config values.
func (c *Config) validate() error {
	if c.RPCEndpoint == "" {
		return fmt.Errorf("%w: rpc_endpoint must be specified", ErrInvalidConfig)
	}

	switch rpc.Commitment(c.Commitment) {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return fmt.Errorf("%w: unknown commitment %q", ErrInvalidConfig, c.Commitment)
	}

	if c.ConfirmTimeout <= 0 || c.PollInterval <= 0 {
		return fmt.Errorf("%w: confirm_timeout and poll_interval must be positive", ErrInvalidConfig)
	}

	if c.MintAccountSize == 0 {
		return fmt.Errorf("%w: mint_account_size must be positive", ErrInvalidConfig)
	}

	if c.FeeRecipient != "" {
		if _, err := c.FeeRecipientKey(); err != nil {
			return err
		}
	}

	if _, err := c.Schedule(); err != nil {
		return err
	}

	return nil
}

// FeeRecipientKey returns parsed fee recipient address.
func (c *Config) FeeRecipientKey() (common.PublicKey, error) {
	if c.FeeRecipient == "" {
		return common.PublicKey{}, ErrMissingFeeRecipient
	}

	if len(base58.Decode(c.FeeRecipient)) != common.PublicKeyLength {
		return common.PublicKey{}, fmt.Errorf("%w: fee_recipient %q is not a valid address", ErrInvalidConfig, c.FeeRecipient)
	}

	return common.PublicKeyFromString(c.FeeRecipient), nil
}

// Schedule returns fee schedule from configured SOL amounts.
func (c *Config) Schedule() (fee.Schedule, error) {
	var (
		schedule fee.Schedule
		err      error
	)

	for _, field := range []struct {
		key   string
		value string
		dst   *fee.Lamports
	}{
		{"fee_base_sol", c.FeeBaseSOL, &schedule.Base},
		{"fee_revoke_freeze_sol", c.FeeRevokeFreezeSOL, &schedule.RevokeFreeze},
		{"fee_revoke_mint_sol", c.FeeRevokeMintSOL, &schedule.RevokeMint},
	} {
		amount, parseErr := decimal.NewFromString(field.value)
		if parseErr != nil {
			return fee.Schedule{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, field.key, parseErr)
		}

		if *field.dst, err = fee.FromSOL(amount); err != nil {
			return fee.Schedule{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, field.key, err)
		}
	}

	if err = schedule.Validate(); err != nil {
		return fee.Schedule{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return schedule, nil
}
