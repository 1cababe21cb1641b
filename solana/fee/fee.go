// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package fee

import (
	"errors"
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/BoostyLabs/tokenlaunch/internal/numbers"
)

// lamportsExp defines decimal exponent of lamport relative to SOL.
const lamportsExp = 9

var (
	// ErrNegativeAmount defines that provided SOL amount is negative.
	ErrNegativeAmount = errors.New("negative amount")
	// ErrSubLamportPrecision defines that provided SOL amount can not be expressed in whole lamports.
	ErrSubLamportPrecision = errors.New("amount precision is finer than one lamport")
	// ErrAmountOverflow defines that provided SOL amount does not fit into lamports range.
	ErrAmountOverflow = errors.New("amount overflows lamports range")
)

// Lamports defines amount in the smallest SOL denomination.
type Lamports uint64

// SOL returns amount as decimal SOL value, for display only.
func (l Lamports) SOL() decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(uint64(l)), -lamportsExp)
}

// String returns human readable SOL amount.
func (l Lamports) String() string {
	return l.SOL().String() + " SOL"
}

// FromSOL converts decimal SOL amount into lamports without rounding.
func FromSOL(amount decimal.Decimal) (Lamports, error) {
	if amount.IsNegative() {
		return 0, ErrNegativeAmount
	}

	shifted := amount.Shift(lamportsExp)
	if !shifted.IsInteger() {
		return 0, ErrSubLamportPrecision
	}

	value := shifted.BigInt()
	if numbers.IsGreater(value, numbers.MaxUInt64Value) {
		return 0, ErrAmountOverflow
	}

	return Lamports(value.Uint64()), nil
}

// Flags describes optional features of issued token that are charged additionally.
type Flags struct {
	RevokeFreeze bool
	RevokeMint   bool
}

// Schedule describes service fee table.
type Schedule struct {
	Base         Lamports // charged for every token.
	RevokeFreeze Lamports // surcharge for freeze authority revocation.
	RevokeMint   Lamports // surcharge for mint authority revocation.
}

// DefaultSchedule defines service fee table: 0.07 SOL base, 0.01 SOL per revoked authority.
var DefaultSchedule = Schedule{
	Base:         70_000_000,
	RevokeFreeze: 10_000_000,
	RevokeMint:   10_000_000,
}

// Validate returns error if the most expensive quote does not fit into lamports range.
func (s Schedule) Validate() error {
	_, err := numbers.SumUint64(uint64(s.Base), uint64(s.RevokeFreeze), uint64(s.RevokeMint))
	if err != nil {
		return ErrAmountOverflow
	}

	return nil
}

// Quote returns total service fee for provided flags.
// Saturates at math.MaxUint64 if schedule does not pass Validate, such fee is never affordable.
func (s Schedule) Quote(flags Flags) Lamports {
	parts := []uint64{uint64(s.Base)}
	if flags.RevokeFreeze {
		parts = append(parts, uint64(s.RevokeFreeze))
	}
	if flags.RevokeMint {
		parts = append(parts, uint64(s.RevokeMint))
	}

	total, err := numbers.SumUint64(parts...)
	if err != nil {
		return math.MaxUint64
	}

	return Lamports(total)
}

// Quote returns total service fee for provided flags by DefaultSchedule.
func Quote(flags Flags) Lamports {
	return DefaultSchedule.Quote(flags)
}
