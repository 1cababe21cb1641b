// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package solana_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/tokenlaunch/solana"
)

func TestProgramError(t *testing.T) {
	err := fmt.Errorf("send: %w", solana.NewProgramError("custom program error: 0x1"))

	require.ErrorIs(t, err, solana.ErrProgramRejected)
	require.False(t, errors.Is(err, solana.ErrNetwork))

	var programErr *solana.ProgramError
	require.True(t, errors.As(err, &programErr))
	require.Equal(t, "custom program error: 0x1", programErr.Detail)
	require.Equal(t, "send: transaction rejected by program: custom program error: 0x1", err.Error())
}
