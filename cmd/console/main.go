// console is the event platform admin console CLI. Session artifacts persist between runs in
// the store selected by TOKEN_STORE_DRIVER.
//
//	console login -email admin@example.com -password password123
//	console events list
//	console -json admins list
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"event-admin-console/internal/cli"
	"event-admin-console/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(cli.ExitError)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Run(ctx, cli.Env{Config: cfg, Stdout: os.Stdout, Stderr: os.Stderr}, os.Args[1:])
	stop()
	os.Exit(code)
}
