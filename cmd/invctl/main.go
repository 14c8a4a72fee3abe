package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/your-org/inventory-backend/internal/app"
	"github.com/your-org/inventory-backend/internal/config"
	"github.com/your-org/inventory-backend/internal/infrastructure/database/postgres"
	"github.com/your-org/inventory-backend/internal/pkg/logger"
)

// env is shared by every command through the app metadata
type env struct {
	cfg *config.Config
	log *logrus.Logger
	db  *postgres.Database
}

func setup(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg)

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.App.Metadata["env"] = &env{cfg: cfg, log: log, db: db}
	return nil
}

func teardown(c *cli.Context) error {
	if e, ok := c.App.Metadata["env"].(*env); ok && e.db != nil {
		return e.db.Close()
	}
	return nil
}

func envFrom(c *cli.Context) *env {
	return c.App.Metadata["env"].(*env)
}

func migrateCommand(c *cli.Context) error {
	e := envFrom(c)
	migration := postgres.NewMigration(e.db.GetDB(), e.log)

	if c.Bool("fresh") {
		if err := migration.DropAllTables(); err != nil {
			return err
		}
	}
	if err := migration.RunAutoMigrations(); err != nil {
		return err
	}
	if err := migration.CreateIndexes(); err != nil {
		return err
	}
	return migration.SeedOrderStates()
}

func seedCommand(c *cli.Context) error {
	e := envFrom(c)
	return postgres.NewMigration(e.db.GetDB(), e.log).SeedOrderStates()
}

func tablesCommand(c *cli.Context) error {
	e := envFrom(c)
	return postgres.NewMigration(e.db.GetDB(), e.log).GetTableInfo()
}

func replenishCommand(c *cli.Context) error {
	e := envFrom(c)

	at := time.Now()
	if raw := c.String("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return cli.Exit(fmt.Sprintf("--at must be RFC3339: %v", err), 2)
		}
		at = parsed
	}

	services := app.NewServices(e.cfg, postgres.NewStore(e.db.GetDB()), e.log, nil)
	report, err := services.Replenishment.Run(c.Context, at)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func main() {
	app := &cli.App{
		Name:     "invctl",
		Usage:    "Administer the inventory backend",
		Metadata: map[string]interface{}{},
		Before:   setup,
		After:    teardown,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Create or update the schema and seed order states",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "fresh",
						Usage: "Drop every table before migrating",
					},
				},
				Action: migrateCommand,
			},
			{
				Name:   "seed",
				Usage:  "Seed the purchase order state lookup",
				Action: seedCommand,
			},
			{
				Name:   "tables",
				Usage:  "List tables in the public schema",
				Action: tablesCommand,
			},
			{
				Name:  "replenish",
				Usage: "Run the periodic review once and print the report",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "at",
						Usage: "Review as of this RFC3339 time instead of now",
					},
				},
				Action: replenishCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
