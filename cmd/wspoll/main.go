// ABOUTME: Entry point for the wspoll command line tool
// ABOUTME: Drives the polling WebSocket client, the fetch dispatcher, the echo endpoint, and the JSON codec

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/2389/wspoll/internal/config"
)

// Version is set at build time.
var version = "dev"

// getConfigPath returns the path to the config file.
// Priority: WSPOLL_CONFIG env var > XDG_CONFIG_HOME/wspoll/config.yaml > ~/.config/wspoll/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("WSPOLL_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "wspoll", "config.yaml")
}

func usage() {
	fmt.Println("Usage: wspoll <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  connect URL [-H 'Name: value']  Open a WebSocket, send stdin lines, print polled items")
	fmt.Println("  fetch URL [-H 'Name: value']    Issue a GET request and print the response")
	fmt.Println("  echo                            Serve a local WebSocket echo endpoint")
	fmt.Println("  json                            Parse JSON from stdin and print it compacted")
	fmt.Println("  version                         Print the version")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd, args := os.Args[1], os.Args[2:]
	if cmd == "version" {
		fmt.Println(version)
		return
	}

	cfg, err := config.LoadOrDefault(getConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: loading config: %v\n", err)
		os.Exit(1)
	}
	logger := setupLogger(cfg.Logging)

	switch cmd {
	case "connect":
		err = runConnect(ctx, cfg, logger, args)
	case "fetch":
		err = runFetch(ctx, cfg, logger, args)
	case "echo":
		err = runEcho(ctx, cfg, logger)
	case "json":
		err = runJSON(os.Stdin, os.Stdout)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
