// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/BoostyLabs/tokenlaunch/solana/issuance"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		handleError(err)
	}
}

func handleError(err error) {
	var issuanceErr *issuance.Error
	if errors.As(err, &issuanceErr) {
		fmt.Fprintln(os.Stderr, issuanceErr.UserMessage())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	os.Exit(1)
}
