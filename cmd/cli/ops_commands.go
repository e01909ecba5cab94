package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	postgresRepo "github.com/iho/goticket/internal/adapter/repository/postgres"
	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/auth"
	"github.com/iho/goticket/internal/infrastructure/clock"
	"github.com/iho/goticket/internal/infrastructure/config"
	"github.com/iho/goticket/internal/infrastructure/logger"
	"github.com/iho/goticket/internal/infrastructure/postgres"
	"github.com/iho/goticket/internal/usecase"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: "console"}, os.Stderr)
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database schema migrations",
	}

	run := func(apply func(m *postgres.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return apply(postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, newLogger(cfg)))
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  run(func(m *postgres.Migrator) error { return m.Up() }),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE:  run(func(m *postgres.Migrator) error { return m.Down() }),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: run(func(m *postgres.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Printf("Version: %d\nDirty: %t\n", version, dirty)
				return nil
			}),
		},
	)

	return cmd
}

// seedFile is the YAML layout accepted by the seed command.
type seedFile struct {
	Events []seedEvent `yaml:"events"`
}

type seedEvent struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	Price    string `yaml:"price"`
	Date     string `yaml:"date"`
	Quantity int    `yaml:"quantity"`
}

// parseSeed decodes a catalog seed file into validated catalog items.
func parseSeed(r io.Reader) ([]*domain.CatalogItem, error) {
	var file seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	items := make([]*domain.CatalogItem, 0, len(file.Events))
	for i, ev := range file.Events {
		price, err := domain.ParseMoney(ev.Price)
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): price: %w", i, ev.Name, err)
		}
		date, err := time.Parse(time.DateOnly, ev.Date)
		if err != nil {
			return nil, fmt.Errorf("event %d (%s): date: %w", i, ev.Name, err)
		}

		item := &domain.CatalogItem{
			EventName: ev.Name,
			Location:  ev.Location,
			UnitPrice: price,
			EventDate: date,
			Quantity:  ev.Quantity,
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, ev.Name, err)
		}
		items = append(items, item)
	}

	return items, nil
}

func seedCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalog events from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			items, err := parseSeed(f)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.DatabaseTimeout)
			defer cancel()

			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, 2, 1)
			if err != nil {
				return fmt.Errorf("failed to connect to postgres: %w", err)
			}
			defer pool.Close()

			inventory := usecase.NewInventoryUseCase(usecase.InventoryConfig{
				TxManager:    postgresRepo.NewTxManager(pool),
				CatalogRepo:  postgresRepo.NewCatalogRepository(pool, nil),
				HoldingRepo:  postgresRepo.NewHoldingRepository(pool, nil),
				Clock:        clock.NewSystem(),
				StoreTimeout: cfg.StoreTimeout,
			})
			if err := inventory.SeedCatalog(ctx, items); err != nil {
				return err
			}

			fmt.Printf("Seeded %d events\n", len(items))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Path to the catalog YAML file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Bearer token helpers",
	}

	var (
		user   string
		secret string
		ttl    time.Duration
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a signed bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("a signing secret is required (--secret or JWT_SECRET)")
			}

			token, err := auth.NewJWTManager(secret, ttl).Generate(user)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	issueCmd.Flags().StringVar(&user, "user", "", "User id to embed in the token")
	issueCmd.Flags().StringVar(&secret, "secret", "", "HMAC signing secret (defaults to JWT_SECRET)")
	issueCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = issueCmd.MarkFlagRequired("user")

	cmd.AddCommand(issueCmd)
	return cmd
}
