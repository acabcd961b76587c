package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/shopgateway/internal/config"
	"github.com/jafarshop/shopgateway/internal/format"
	"github.com/jafarshop/shopgateway/internal/service"
	"github.com/jafarshop/shopgateway/internal/terminal"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-variant/main.go <term>")
		fmt.Println("Example: go run cmd/find-variant/main.go \"cron\"")
		os.Exit(1)
	}

	term := os.Args[1]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := terminal.NewClient(cfg.Terminal, logger)
	catalog := service.NewCatalogService(client, logger)

	fmt.Printf("🔍 Searching for variants matching: %s\n\n", term)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	matches, err := catalog.FindVariants(ctx, term)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Search failed: %v\n", err)
		os.Exit(1)
	}

	if len(matches) == 0 {
		fmt.Printf("❌ No variants found matching: %s\n", term)
		os.Exit(1)
	}

	for _, m := range matches {
		fmt.Printf("✅ %s / %s\n", m.Product.Name, m.Variant.Name)
		fmt.Printf("   Product ID: %s\n", m.Product.ID)
		fmt.Printf("   Variant ID: %s\n", m.Variant.ID)
		fmt.Printf("   Price: %s\n\n", format.Money(m.Variant.Price))
	}
	fmt.Printf("Found %d variant(s)\n", len(matches))
}
