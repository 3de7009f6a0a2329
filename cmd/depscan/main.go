package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/depscan/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.New(os.Stdout, os.Stderr).RootCommand().ExecuteContext(ctx)
	stop()

	code := cli.ExitCode(err)
	if code == cli.ExitFatal {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(code)
}
