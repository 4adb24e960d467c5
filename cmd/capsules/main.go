// Package main provides the capsules CLI, a command-line surface over the
// task lifecycle engine.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mesh-intelligence/capsules/pkg/engine"
	"github.com/mesh-intelligence/capsules/pkg/types"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "capsules:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the CLI exit code: bad input and missing
// entities are user errors, everything else is a system error.
func exitCode(err error) int {
	var pre *engine.PreconditionError
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidTitle),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, engine.ErrParentCapsuleMismatch),
		errors.As(err, &pre):
		return exitUserError
	default:
		return exitSysError
	}
}
