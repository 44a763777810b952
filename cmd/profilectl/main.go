// Command profilectl manages the signed-in user's profile from a terminal.
//
// Usage:
//
//	profilectl [-u url] [-e email | -token token] show
//	profilectl ... name NEW_NAME
//	profilectl ... avatar FILE
//	profilectl ... passwd
//	profilectl ... delete
//
// With -e the password is prompted for and a session is opened first.
// FACTURO_URL and FACTURO_TOKEN are read when the flags are absent.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
