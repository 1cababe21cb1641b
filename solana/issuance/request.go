// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package issuance

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/BoostyLabs/tokenlaunch/internal/numbers"
	"github.com/BoostyLabs/tokenlaunch/solana/fee"
)

const (
	// MaxNameLength defines maximum token name length in bytes.
	MaxNameLength = 32
	// MaxSymbolLength defines maximum token symbol length in bytes.
	MaxSymbolLength = 10
	// MaxURILength defines maximum metadata uri length in bytes.
	MaxURILength = 200
	// MaxDecimals defines maximum token precision.
	MaxDecimals = 9
)

// ErrInvalidRequest defines that token creation request does not pass validation.
var ErrInvalidRequest = errors.New("invalid token creation request")

// validate is safe for concurrent use once validations are registered.
var validate = newValidator()

// TokenCreationRequest describes token to create.
type TokenCreationRequest struct {
	Name     string `validate:"required,maxbytes=32"`
	Symbol   string `validate:"required,maxbytes=10"`
	Decimals uint8  `validate:"max=9"`
	Supply   uint64 `validate:"gt=0"` // whole tokens.
	URI      string `validate:"omitempty,maxbytes=200"`

	// descriptive fields, carried through without validation.
	Description string
	Creator     string
	Website     string
	Telegram    string
	Twitter     string

	RevokeFreeze bool
	RevokeMint   bool
}

// Flags returns fee relevant flags of the request.
func (r TokenCreationRequest) Flags() fee.Flags {
	return fee.Flags{
		RevokeFreeze: r.RevokeFreeze,
		RevokeMint:   r.RevokeMint,
	}
}

// Validate checks request fields and that scaled supply fits into token amount.
func (r TokenCreationRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %s", ErrInvalidRequest, describe(fieldErrs))
		}

		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if _, err := numbers.ScaleUint64(r.Supply, r.Decimals); err != nil {
		return fmt.Errorf("%w: supply %d with %d decimals overflows token amount", ErrInvalidRequest, r.Supply, r.Decimals)
	}

	return nil
}

// newValidator returns validator with byte length rule registered.
// Builtin max counts runes, ledger limits count encoded bytes.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}

		return len(fl.Field().String()) <= limit
	})
	if err != nil {
		panic(err)
	}

	return v
}

// describe renders validation errors in short human readable form.
func describe(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		switch fieldErr.Tag() {
		case "required":
			parts = append(parts, strings.ToLower(fieldErr.Field())+" is required")
		case "maxbytes":
			parts = append(parts, fmt.Sprintf("%s must be at most %s bytes", strings.ToLower(fieldErr.Field()), fieldErr.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", strings.ToLower(fieldErr.Field()), fieldErr.Param()))
		case "gt":
			parts = append(parts, fmt.Sprintf("%s must be greater than %s", strings.ToLower(fieldErr.Field()), fieldErr.Param()))
		default:
			parts = append(parts, fieldErr.Error())
		}
	}

	return strings.Join(parts, ", ")
}
