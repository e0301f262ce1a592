// SPDX-FileCopyrightText: 2025 The Devsetup Authors
// SPDX-License-Identifier: EUPL-1.2

// Package main provides the CLI entry point for devsetup.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/janderssonse/devsetup/internal/cli"
	"github.com/janderssonse/devsetup/internal/domain"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := cli.NewCLI()

	if err := app.Run(ctx, os.Args); err != nil {
		exitErr := &domain.ExitError{}
		if errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "%s\n", exitErr.Error())
			logger := app.Logger()
			logger.Debug().Err(err).Int("code", exitErr.Code).Msg("exiting")

			return exitErr.Code
		}

		fmt.Fprintf(os.Stderr, "%v\n", err)

		return domain.ExitFatal
	}

	return domain.ExitSuccess
}
