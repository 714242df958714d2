package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eringen/pubadmin"
	"github.com/eringen/pubadmin/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			log.Fatalf("pubadmin: %v", err)
		}
	case "init":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: pubadmin init <module-path>")
			os.Exit(1)
		}
		if err := runInit(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("pubadmin %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe() error {
	cfg, err := pubadmin.LoadConfig()
	if err != nil {
		return err
	}

	app := pubadmin.New(cfg, views.Default())
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Printf("pubadmin: shutdown: %v", err)
		}
	}()

	return app.Start()
}

func printUsage() {
	fmt.Println(`pubadmin - An admin dashboard for REST content backends, built with Go, Echo, and templ

Usage:
  pubadmin <command> [arguments]

Commands:
  serve         Start the dashboard (configured from the environment or .env)
  init <name>   Create a deployment directory with .env.example and main.go
  version       Print the pubadmin version
  help          Show this help message

Examples:
  API_BASE_URL=https://api.example.com ADMIN_SESSION_SECRET=... pubadmin serve
  pubadmin init github.com/acme/admin`)
}
