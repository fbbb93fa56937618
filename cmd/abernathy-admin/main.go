// Package main is the entry point for the Abernathy accounts admin CLI.
// This tool provides administrative commands for generating the service's
// API key and bootstrapping accounts without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/prn-tf/abernathy-accounts/internal/config"
	"github.com/prn-tf/abernathy-accounts/internal/lock"
	"github.com/prn-tf/abernathy-accounts/internal/pkg/crypto"
	"github.com/prn-tf/abernathy-accounts/internal/repository"
	"github.com/prn-tf/abernathy-accounts/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("Abernathy Accounts Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "apikey":
		key, err := crypto.GenerateAPIKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate API key: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(key)

	case "user":
		if err := runUserCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// runUserCommand handles `user create`.
func runUserCommand(args []string) error {
	if len(args) < 1 || args[0] != "create" {
		return fmt.Errorf("usage: abernathy-admin user create --username <name> --email <email> --password <password>")
	}

	fs := flag.NewFlagSet("user create", flag.ExitOnError)
	configPath := fs.String("config", "", "path to configuration file")
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (min 8 characters)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger := zerolog.Nop()

	store, err := repository.NewStore(ctx, cfg.Store, cfg.Lock, lock.NewMemoryLocker(), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	// Fail early with a clear message instead of surfacing the registration
	// conflict error.
	exists, err := store.Users.ExistsByEmail(ctx, *email)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("a user with email %s already exists", *email)
	}

	accounts := service.NewAccountService(store.Users, logger)
	out, err := accounts.Register(ctx, service.RegisterInput{
		Username: *username,
		Email:    *email,
		Password: *password,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created user %s (%s)\n", out.User.Username, out.User.Email)
	return nil
}

func printUsage() {
	fmt.Println(`Abernathy Accounts Admin CLI

Usage:
  abernathy-admin <command> [arguments]

Commands:
  apikey      Generate a random API key for the access gate
  user        Bootstrap accounts (create)
  version     Print version information
  help        Show this help message

Examples:
  abernathy-admin apikey
  abernathy-admin user create --username admin --email admin@example.com --password changeme123

Use "abernathy-admin <command> --help" for more information about a command.`)
}
