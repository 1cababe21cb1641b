// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package issuance_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/tokenlaunch/solana/fee"
	"github.com/BoostyLabs/tokenlaunch/solana/issuance"
)

func TestTokenCreationRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *issuance.TokenCreationRequest)
		errMsg string
	}{
		{
			name:   "valid",
			modify: func(r *issuance.TokenCreationRequest) {},
		},
		{
			name: "name at byte limit",
			modify: func(r *issuance.TokenCreationRequest) {
				r.Name = strings.Repeat("a", issuance.MaxNameLength)
			},
		},
		{
			name: "multibyte name over byte limit",
			modify: func(r *issuance.TokenCreationRequest) {
				r.Name = strings.Repeat("й", 17)
			},
			errMsg: "name must be at most 32 bytes",
		},
		{
			name:   "empty name",
			modify: func(r *issuance.TokenCreationRequest) { r.Name = "" },
			errMsg: "name is required",
		},
		{
			name: "long symbol",
			modify: func(r *issuance.TokenCreationRequest) {
				r.Symbol = strings.Repeat("S", issuance.MaxSymbolLength+1)
			},
			errMsg: "symbol must be at most 10 bytes",
		},
		{
			name:   "decimals over max",
			modify: func(r *issuance.TokenCreationRequest) { r.Decimals = issuance.MaxDecimals + 1 },
			errMsg: "decimals must be at most 9",
		},
		{
			name:   "zero supply",
			modify: func(r *issuance.TokenCreationRequest) { r.Supply = 0 },
			errMsg: "supply must be greater than 0",
		},
		{
			name: "long uri",
			modify: func(r *issuance.TokenCreationRequest) {
				r.URI = "https://" + strings.Repeat("u", issuance.MaxURILength)
			},
			errMsg: "uri must be at most 200 bytes",
		},
		{
			name: "scaled supply overflow",
			modify: func(r *issuance.TokenCreationRequest) {
				r.Supply, r.Decimals = 19_000_000_000, 9
			},
			errMsg: "supply 19000000000 with 9 decimals overflows token amount",
		},
		{
			name: "descriptive fields are not validated",
			modify: func(r *issuance.TokenCreationRequest) {
				r.Description = strings.Repeat("d", 1000)
				r.Website = "not a url"
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := lunaCoin()
			test.modify(&req)

			err := req.Validate()
			if test.errMsg == "" {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, issuance.ErrInvalidRequest)
			require.Contains(t, err.Error(), test.errMsg)
		})
	}
}

func TestTokenCreationRequest_Flags(t *testing.T) {
	req := lunaCoin()
	require.Equal(t, fee.Flags{RevokeFreeze: false, RevokeMint: true}, req.Flags())
}
