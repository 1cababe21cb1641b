// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

// InstructionKind defines type to label instructions of built transactions.
type InstructionKind byte

const (
	// CreateMintAccountKind defines mint account allocation instruction.
	CreateMintAccountKind InstructionKind = 0x20
	// InitializeMintKind defines mint initialization instruction.
	InitializeMintKind InstructionKind = 0x21
	// CreateHoldingAccountKind defines associated token account creation instruction.
	CreateHoldingAccountKind InstructionKind = 0x22
	// MintSupplyKind defines supply minting instruction.
	MintSupplyKind InstructionKind = 0x23
	// CreateMetadataKind defines metadata account creation instruction.
	CreateMetadataKind InstructionKind = 0x24
	// RevokeMintAuthorityKind defines mint authority revocation instruction.
	RevokeMintAuthorityKind InstructionKind = 0x25
)

// Byte returns InstructionKind as byte.
func (k InstructionKind) Byte() byte {
	return byte(k)
}

// String returns InstructionKind name.
func (k InstructionKind) String() string {
	switch k {
	case CreateMintAccountKind:
		return "create-mint-account"
	case InitializeMintKind:
		return "initialize-mint"
	case CreateHoldingAccountKind:
		return "create-holding-account"
	case MintSupplyKind:
		return "mint-to"
	case CreateMetadataKind:
		return "create-metadata"
	case RevokeMintAuthorityKind:
		return "revoke-mint-authority"
	}

	return "unknown"
}
