package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/shopgateway/internal/config"
	"github.com/jafarshop/shopgateway/internal/domain"
	"github.com/jafarshop/shopgateway/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/create-gateway-key/main.go <client-name> [api-key]")
		fmt.Println("Example: go run cmd/create-gateway-key/main.go \"desktop agent\"")
		os.Exit(1)
	}

	clientName := os.Args[1]

	apiKey := ""
	if len(os.Args) > 2 {
		apiKey = os.Args[2]
	} else {
		generated, err := generateAPIKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate API key: %v\n", err)
			os.Exit(1)
		}
		apiKey = generated
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Database.Enabled() {
		fmt.Fprintln(os.Stderr, "DB_HOST must be set to store gateway keys")
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare schema: %v\n", err)
		os.Exit(1)
	}

	// Hash the API key
	apiKeyHash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db, logger)

	key := &domain.GatewayKey{
		Name:       clientName,
		APIKeyHash: string(apiKeyHash),
		IsActive:   true,
	}
	if err := repos.GatewayKey.Create(context.Background(), key); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create gateway key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Gateway key created successfully!\n\n")
	fmt.Printf("Key ID: %s\n", key.ID.String())
	fmt.Printf("Client Name: %s\n", key.Name)
	fmt.Printf("API Key: %s\n", apiKey)
	fmt.Printf("\n⚠️  IMPORTANT: Save this API key securely! You won't be able to see it again.\n")
	fmt.Printf("\nUse this API key in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", apiKey)
}

func generateAPIKey() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "sgw_" + hex.EncodeToString(buf), nil
}
