package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/slotworks/vending/catalog"
	"github.com/slotworks/vending/console"
	zaplog "github.com/slotworks/vending/zap"
)

const (
	defaultAdminSecret = "pogi123"
	defaultEnvironment = string(zaplog.EnvironmentLocal)
)

// seedCatalog returns the machine's stock configuration.
func seedCatalog() []catalog.Item {
	return []catalog.Item{
		{Code: 1, Name: "Royal", Price: decimal.NewFromFloat(5.50), Category: catalog.CategoryDrink, Stock: 5},
		{Code: 2, Name: "Pocari Sweat", Price: decimal.NewFromFloat(5.50), Category: catalog.CategoryDrink, Stock: 2},
		{Code: 3, Name: "Water", Price: decimal.NewFromFloat(3.50), Category: catalog.CategoryDrink, Stock: 10},
		{Code: 4, Name: "Fudgee Bar", Price: decimal.NewFromFloat(7.50), Category: catalog.CategorySnack, Stock: 2},
		{Code: 5, Name: "Piatos", Price: decimal.NewFromFloat(4.50), Category: catalog.CategorySnack, Stock: 7},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func run() error {
	ctx := context.Background()

	logger, _, err := zaplog.New(zaplog.Config{
		Environment: zaplog.Environment(envOr("VEND_ENV", defaultEnvironment)),
		Level:       os.Getenv("VEND_LOG_LEVEL"),
	})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync(ctx) //nolint:errcheck

	cat, err := catalog.New(seedCatalog())
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	adminCode := console.DefaultAdminCode
	if raw := os.Getenv("VEND_ADMIN_CODE"); raw != "" {
		adminCode, err = strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("parse VEND_ADMIN_CODE: %w", err)
		}
	}

	machine, err := console.New(console.Config{
		Catalog:     cat,
		AdminSecret: envOr("VEND_ADMIN_SECRET", defaultAdminSecret),
		AdminCode:   adminCode,
		Input:       os.Stdin,
		Output:      os.Stdout,
		Announcer:   console.LogAnnouncer{Logger: logger},
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("build machine: %w", err)
	}

	return machine.Run(ctx)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
