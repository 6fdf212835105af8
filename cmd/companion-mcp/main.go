package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iammorganparry/companion/internal/client"
	"github.com/iammorganparry/companion/internal/mcp"
)

const version = "1.0.0"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	userID := os.Getenv("COMPANION_USER")
	if userID == "" {
		fmt.Fprintln(os.Stderr, "COMPANION_USER must be set")
		os.Exit(2)
	}
	c := client.New(envOr("COMPANION_URL", "http://localhost:8080"), os.Getenv("API_KEY"), userID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcp.NewServer(c, version).Run(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %s\n", err)
		os.Exit(1)
	}
}
