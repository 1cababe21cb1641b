// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package txwire

import (
	"bytes"
	"errors"
	"math/big"

	"github.com/aviate-labs/leb128"
	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/BoostyLabs/tokenlaunch/internal/numbers"
)

const (
	// PacketDataSize defines maximum size of serialized transaction accepted by the ledger.
	PacketDataSize = 1232
	// SignatureSize defines ed25519 signature size.
	SignatureSize = 64
)

var (
	// ErrMalformedTransaction defines that serialized transaction could not be decoded.
	ErrMalformedTransaction = errors.New("malformed transaction")
	// ErrPacketTooLarge defines that serialized transaction exceeds PacketDataSize.
	ErrPacketTooLarge = errors.New("transaction exceeds packet size")
	// ErrInvalidSignature defines that provided string is not base58 encoded signature.
	ErrInvalidSignature = errors.New("invalid transaction signature")
)

// maxCompactU16 defines the largest value of compact-u16 (shortvec) encoding.
var maxCompactU16 = big.NewInt(0xffff)

// Summary describes signature section of serialized transaction.
type Summary struct {
	Size       int      // serialized transaction size in bytes.
	Signatures [][]byte // signature slots in order of required signers.
}

// Inspect decodes signature section of serialized transaction.
//
//	┌───────────────────┬─────────────────────────────┬─────────────┐
//	│ compact-u16 count │ count * 64 bytes signatures │   message   │
//	└───────────────────┴─────────────────────────────┴─────────────┘
//
// compact-u16 is unsigned LEB128 limited to 16 bits.
func Inspect(raw []byte) (Summary, error) {
	if len(raw) > PacketDataSize {
		return Summary{}, ErrPacketTooLarge
	}

	reader := bytes.NewReader(raw)
	count, err := leb128.DecodeUnsigned(reader)
	if err != nil {
		return Summary{}, errors.Join(ErrMalformedTransaction, err)
	}
	if numbers.IsGreater(count, maxCompactU16) {
		return Summary{}, ErrMalformedTransaction
	}

	slots := int(count.Int64())
	if reader.Len() < slots*SignatureSize {
		return Summary{}, ErrMalformedTransaction
	}

	summary := Summary{Size: len(raw), Signatures: make([][]byte, slots)}
	for i := 0; i < slots; i++ {
		signature := make([]byte, SignatureSize)
		if _, err = reader.Read(signature); err != nil {
			return Summary{}, errors.Join(ErrMalformedTransaction, err)
		}

		summary.Signatures[i] = signature
	}

	return summary, nil
}

// Signed returns true if signature slot with idx is filled.
func (s Summary) Signed(idx int) bool {
	if idx < 0 || idx >= len(s.Signatures) {
		return false
	}

	for _, b := range s.Signatures[idx] {
		if b != 0 {
			return true
		}
	}

	return false
}

// Missing returns amount of empty signature slots.
func (s Summary) Missing() int {
	var missing int
	for idx := range s.Signatures {
		if !s.Signed(idx) {
			missing++
		}
	}

	return missing
}

// ParseSignature decodes base58 transaction signature.
func ParseSignature(signature string) ([]byte, error) {
	decoded := base58.Decode(signature)
	if len(decoded) != SignatureSize {
		return nil, ErrInvalidSignature
	}

	return decoded, nil
}

// EncodeSignature encodes transaction signature into base58.
func EncodeSignature(signature []byte) string {
	return base58.Encode(signature)
}
