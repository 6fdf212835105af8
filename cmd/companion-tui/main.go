package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iammorganparry/companion/internal/client"
	"github.com/iammorganparry/companion/internal/tui"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	server := flag.String("server", envOr("COMPANION_URL", "http://localhost:8080"), "companion server URL")
	apiKey := flag.String("api-key", os.Getenv("API_KEY"), "bearer key of the server")
	user := flag.String("user", envOr("COMPANION_USER", os.Getenv("USER")), "user ID to chat as")
	character := flag.String("character", os.Getenv("COMPANION_CHARACTER"), "persona ID (default persona when empty)")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "a user ID is required: pass -user or set COMPANION_USER")
		os.Exit(2)
	}

	c := client.New(*server, *apiKey, *user)
	p := tea.NewProgram(
		tui.NewModel(c, *character),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
