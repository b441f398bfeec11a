// Package main provides the CLI entrypoint for bridge-generator.
//
// bridge-generator converts a Supabase-style project into a FastAPI service
// for the Databricks Apps platform:
//   - Scans edge function handlers, type declarations and UI components
//   - Replays SQL migrations into a table schema
//   - Converts types and third-party API calls through rule and tier tables
//   - Renders routers, models, migrations and deployment configuration
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}
