// Command objectlock provisions a governance bucket and a compliance bucket,
// then uploads every regular file of the configured directory into one of
// them: writable files go to the governance bucket, read-only files to the
// compliance bucket.
//
// Usage:
//
//	objectlock [flags] <access_key_id> <secret_access_key> <session_token>
//
// Pass None as the session token for long-lived keys.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, newGateway)
	stop()
	os.Exit(code)
}
