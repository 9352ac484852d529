package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gaborage/go-xmlrpc/internal/commands"
)

var version = "dev" // Will be set during build

func main() {
	rootCmd := &cobra.Command{
		Use:   "xmlrpc-send",
		Short: "Send XML-RPC requests with retries",
		Long: `Sends an XML-RPC document to an HTTP endpoint and prints the response.

Each attempt is bounded by a timeout and failed attempts are retried after a
fixed backoff. Settings come from xmlrpc.yaml, XMLRPC_* environment variables
and command-line flags, in increasing order of priority.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		commands.NewSendCommand(),
		commands.NewVersionCommand(version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
