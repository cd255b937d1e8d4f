package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/ardnew/chore/cli"
	"github.com/ardnew/chore/log"
	"github.com/ardnew/chore/runner"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error(
			"run failed",
			slog.Any("error", err),
		) // slog automatically uses LogValue()

		// A failed recipe line propagates its subprocess exit code.
		var execErr *runner.ExecutionError
		if errors.As(err, &execErr) && execErr.ExitCode > 0 {
			os.Exit(execErr.ExitCode)
		}

		os.Exit(1)
	}
}
