// Command bookingctl browses a specialist's calendar through the booking API
// from a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ChefJodlak/prooptica-sub000/internal/calendarview"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "booking API base URL")
	specialist := flag.String("specialist", "", "specialist id (required)")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	if *specialist == "" {
		fmt.Fprintln(os.Stderr, "-specialist is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(*logLevel)
	client := calendarview.NewClient(*apiURL, calendarview.WithLogger(logger))
	sh := newShell(client, os.Stdout, logger)

	if err := sh.run(ctx, *specialist, os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
