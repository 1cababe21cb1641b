// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

package numbers

import (
	"errors"
	"math"
	"math/big"
)

// Zero defines 0 number.
const Zero = 0

// ErrUint64Overflow defines that result does not fit into uint64.
var ErrUint64Overflow = errors.New("uint64 overflow")

// ZeroBigInt defies 0 as *big.Int type.
var ZeroBigInt = big.NewInt(0)

// TenBigInt defies 10 as *big.Int type.
var TenBigInt = big.NewInt(10)

// MaxUInt64Value defines maximum value of uint64 type.
var MaxUInt64Value = new(big.Int).SetUint64(math.MaxUint64)

// IsPositive returns true if the number is grater than zero.
func IsPositive(num *big.Int) bool {
	return num.Sign() > Zero
}

// IsGreater returns true is a > b.
func IsGreater(a, b *big.Int) bool {
	return a.Cmp(b) > Zero
}

// IsLess returns true is a < b.
func IsLess(a, b *big.Int) bool {
	return a.Cmp(b) < Zero
}

// Pow10 returns 10^exp as *big.Int type.
func Pow10(exp uint8) *big.Int {
	return new(big.Int).Exp(TenBigInt, big.NewInt(int64(exp)), nil)
}

// ScaleUint64 returns amount * 10^decimals, ErrUint64Overflow if result does not fit into uint64.
func ScaleUint64(amount uint64, decimals uint8) (uint64, error) {
	scaled := new(big.Int).Mul(new(big.Int).SetUint64(amount), Pow10(decimals))
	if IsGreater(scaled, MaxUInt64Value) {
		return 0, ErrUint64Overflow
	}

	return scaled.Uint64(), nil
}

// SumUint64 returns sum of provided values, ErrUint64Overflow if result does not fit into uint64.
func SumUint64(values ...uint64) (uint64, error) {
	sum := new(big.Int)
	for _, value := range values {
		sum.Add(sum, new(big.Int).SetUint64(value))
	}

	if IsGreater(sum, MaxUInt64Value) {
		return 0, ErrUint64Overflow
	}

	return sum.Uint64(), nil
}
