package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"users-api/cmd/api/app"
	"users-api/cmd/api/infrastructure"
	"users-api/internal/config"
)

// Command applies the users schema and optionally seeds the default users.
type Command struct {
	Config string `help:"Directory containing app.env." default:"." env:"CONFIG_PATH" type:"path"`
	Seed   bool   `help:"Insert the default users after migrating." env:"DB_SEED"`
}

// Run is invoked by kong once flags are parsed.
func (c *Command) Run(ctx context.Context) error {
	cfg, err := config.LoadConfig(c.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	l, err := app.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	return migrate(ctx, cfg, c.Seed || cfg.DB.Seed, l)
}

func migrate(ctx context.Context, cfg *config.Config, seed bool, l *zap.Logger) error {
	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := infrastructure.CloseDatabase(db); err != nil {
			l.Warn("failed to close database", zap.Error(err))
		}
	}()

	if err := infrastructure.RunMigrations(ctx, db, seed, l); err != nil {
		return err
	}

	l.Info("migration complete", zap.String("driver", cfg.DB.Driver), zap.Bool("seeded", seed))
	return nil
}

func main() {
	command := new(Command)
	ctx := kong.Parse(
		command,
		kong.Name("migrate"),
		kong.Description("Create the users table and seed default users"),
		kong.BindTo(context.Background(), (*context.Context)(nil)),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
