// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/tokenlaunch/internal/config"
	"github.com/BoostyLabs/tokenlaunch/solana/fee"
)

const recipient = "9B5XszUGdMaxCZ7uSQhPzdks5ZQSmWxrmzCSvtJ6Ns6g"

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "tokenlaunch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		cfg, err := config.Load("")
		require.NoError(t, err)
		require.Equal(t, rpc.DevnetRPCEndpoint, cfg.RPCEndpoint)
		require.Equal(t, "confirmed", cfg.Commitment)
		require.Equal(t, 90*time.Second, cfg.ConfirmTimeout)
		require.Equal(t, 2*time.Second, cfg.PollInterval)
		require.EqualValues(t, 82, cfg.MintAccountSize)
		require.Equal(t, "info", cfg.LogLevel)

		schedule, err := cfg.Schedule()
		require.NoError(t, err)
		require.Equal(t, fee.DefaultSchedule, schedule)

		_, err = cfg.FeeRecipientKey()
		require.ErrorIs(t, err, config.ErrMissingFeeRecipient)
	})

	t.Run("file", func(t *testing.T) {
		path := writeConfig(t, `
rpc_endpoint: http://127.0.0.1:8899
fee_recipient: `+recipient+`
commitment: finalized
confirm_timeout: 30s
fee_base_sol: "0.1"
`)

		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "http://127.0.0.1:8899", cfg.RPCEndpoint)
		require.Equal(t, "finalized", cfg.Commitment)
		require.Equal(t, 30*time.Second, cfg.ConfirmTimeout)

		key, err := cfg.FeeRecipientKey()
		require.NoError(t, err)
		require.Equal(t, common.PublicKeyFromString(recipient), key)

		schedule, err := cfg.Schedule()
		require.NoError(t, err)
		require.Equal(t, fee.Lamports(100_000_000), schedule.Base)
		require.Equal(t, fee.Lamports(10_000_000), schedule.RevokeMint)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfig(t, "commitment: finalized\n")
		t.Setenv("TOKENLAUNCH_COMMITMENT", "processed")
		t.Setenv("TOKENLAUNCH_POLL_INTERVAL", "500ms")

		cfg, err := config.Load(path)
		require.NoError(t, err)
		require.Equal(t, "processed", cfg.Commitment)
		require.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	})

	t.Run("invalid values", func(t *testing.T) {
		tests := map[string]string{
			"commitment":    "commitment: eventually\n",
			"fee recipient": "fee_recipient: not-an-address\n",
			"fee precision": "fee_base_sol: \"0.0000000001\"\n",
			"fee format":    "fee_revoke_mint_sol: ten\n",
			"timeout":       "confirm_timeout: 0s\n",
		}

		for name, content := range tests {
			t.Run(name, func(t *testing.T) {
				_, err := config.Load(writeConfig(t, content))
				require.ErrorIs(t, err, config.ErrInvalidConfig)
			})
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}
